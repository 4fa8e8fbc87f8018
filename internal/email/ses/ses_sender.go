package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"orcavox/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendQuoteEmail(ctx context.Context, email port.QuoteEmail) error {
	subject := fmt.Sprintf("Orçamento - %s", email.EventName)
	htmlBody := buildQuoteHTML(email)
	textBody := fmt.Sprintf(
		"Olá %s,\n\nSegue o orçamento para %s no valor total de %s %.2f.\n\nBaixe a planilha completa aqui:\n%s\n\nO link expira em 1 hora.\n\nEquipe OrcaVox",
		email.ClientName, email.EventName, email.Currency, email.GrandTotal, email.AttachmentURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{email.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildQuoteHTML(email port.QuoteEmail) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Seu orçamento está pronto</h2>
  <p>Olá %s,</p>
  <p>Segue o orçamento para <strong>%s</strong> no valor total de <strong>%s %.2f</strong>.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Baixar planilha</a>
  </p>
  <p>Ou copie e cole este link no navegador:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <p style="color: #999; font-size: 12px;">O link expira em 1 hora.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">OrcaVox - Orçamentos por voz</p>
</body>
</html>`, email.ClientName, email.EventName, email.Currency, email.GrandTotal, email.AttachmentURL, email.AttachmentURL)
}
