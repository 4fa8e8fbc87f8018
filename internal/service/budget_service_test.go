package service_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orcavox/internal/analytics"
	"orcavox/internal/config"
	"orcavox/internal/domain"
	"orcavox/internal/port"
	"orcavox/internal/service"
	"orcavox/internal/session"
)

type memPrefs struct {
	saved map[string]*domain.ClientPreferences
}

func (m *memPrefs) Save(_ context.Context, prefs *domain.ClientPreferences) error {
	if m.saved == nil {
		m.saved = map[string]*domain.ClientPreferences{}
	}
	m.saved[prefs.ClientID] = prefs
	return nil
}

func (m *memPrefs) Get(_ context.Context, clientID string) (*domain.ClientPreferences, error) {
	p, ok := m.saved[clientID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type memStorage struct {
	objects map[string][]byte
}

func (m *memStorage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.objects[input.Key] = data
	return &port.UploadOutput{Location: "memory://" + input.Key}, nil
}

func (m *memStorage) Delete(_ context.Context, _, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memStorage) GetPresignedURL(_ context.Context, _, key string, _ int64) (string, error) {
	return "https://signed.example/" + key, nil
}

type memEmail struct {
	sent []port.QuoteEmail
}

func (m *memEmail) SendQuoteEmail(_ context.Context, email port.QuoteEmail) error {
	m.sent = append(m.sent, email)
	return nil
}

func newTestService(t *testing.T) (service.BudgetService, *analytics.Recorder, *memPrefs, *memStorage, *memEmail) {
	t.Helper()
	cfg := &config.Config{}
	cfg.S3.Bucket = "test-bucket"
	cfg.S3.PresignExpiry = 3600
	cfg.Export.KeyPrefix = "quotes"
	cfg.Export.SheetName = "Orçamento"

	rec := analytics.NewRecorder()
	prefs := &memPrefs{}
	storage := &memStorage{}
	email := &memEmail{}
	return service.NewBudgetService(cfg, rec, prefs, storage, email), rec, prefs, storage, email
}

func structuredDraft(t *testing.T) string {
	t.Helper()
	doc := &domain.BudgetDocument{
		Type: "budget_draft",
		Meta: domain.Meta{Client: "Maria Souza", Event: "Casamento", Currency: "BRL"},
		Items: []domain.LineItem{
			{Category: domain.CategorySound, Name: "Sistema de Som Completo", Quantity: 2, UnitPrice: 300},
		},
		Taxes: []domain.Tax{{Name: "ISS", Percent: 5}},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(raw)
}

func TestProcessResponse_StructuredDraft(t *testing.T) {
	svc, rec, _, _, _ := newTestService(t)

	out, err := svc.ProcessResponse(context.Background(), structuredDraft(t))
	require.NoError(t, err)

	assert.Equal(t, "budget_draft", out.ResponseType)
	require.NotNil(t, out.Document)
	assert.InDelta(t, 630.0, out.Document.Totals.GrandTotal, 1e-6)
	assert.Same(t, out.Document, svc.Document())

	stats := rec.Stats()
	assert.Equal(t, 1, stats.PipelineMetrics["budgets_generated_total"])
	assert.Equal(t, 1, stats.PipelineBreakdown["budgets_by_method"]["structured"])
	assert.Equal(t, 1, stats.PipelineBreakdown["pipeline_responses_by_type"]["budget_draft"])
	assert.Contains(t, stats.PerformanceMetrics, "response_time")
}

func TestProcessResponse_NewDraftResetsEditCounters(t *testing.T) {
	svc, rec, _, _, _ := newTestService(t)

	_, err := svc.ProcessResponse(context.Background(), structuredDraft(t))
	require.NoError(t, err)
	_, _, err = svc.EditField("meta.cliente", "Ana Lima")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Stats().Edits["meta.cliente"])

	_, err = svc.ProcessResponse(context.Background(), structuredDraft(t))
	require.NoError(t, err)

	assert.Zero(t, rec.Stats().Edits["meta.cliente"])
	assert.Equal(t, "Maria Souza", svc.Document().Meta.Client)
}

func TestProcessResponse_PartialInitializesSkeleton(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.ProcessResponse(context.Background(),
		`{"type":"budget_partial","itens":[{"categoria":"Som","nome":"Caixa","quantidade":2,"preco_unit":100}]}`)
	require.NoError(t, err)
	out, err := svc.ProcessResponse(context.Background(),
		`{"type":"budget_partial","taxas":[{"nome":"Transporte","valor":50}]}`)
	require.NoError(t, err)

	doc := out.Document
	require.NotNil(t, doc)
	require.Len(t, doc.Items, 1)
	assert.InDelta(t, 200.0, doc.Totals.ItemsSubtotal, 1e-6)
	assert.InDelta(t, 50.0, doc.Totals.Fees, 1e-6)
}

func TestProcessResponse_InformationalEventsLeaveDocumentAlone(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.ProcessResponse(context.Background(), structuredDraft(t))
	require.NoError(t, err)
	before := svc.Document().Totals.GrandTotal

	out, err := svc.ProcessResponse(context.Background(),
		`{"type":"contract_analysis","summary":"3 itens acima do mercado"}`)
	require.NoError(t, err)
	assert.Contains(t, out.StatusText, "3 itens acima do mercado")

	out, err = svc.ProcessResponse(context.Background(),
		`{"type":"price_comparison","message":"8% acima do histórico"}`)
	require.NoError(t, err)
	assert.Contains(t, out.StatusText, "8% acima do histórico")

	assert.InDelta(t, before, svc.Document().Totals.GrandTotal, 1e-6)
}

func TestProcessResponse_MemoryUpdatePersistsPreferences(t *testing.T) {
	svc, _, prefs, _, _ := newTestService(t)

	out, err := svc.ProcessResponse(context.Background(),
		`{"type":"memory_update","cliente_id":"maria","preferencias":{"moeda":"BRL"},"confiança":"alta"}`)
	require.NoError(t, err)
	assert.Equal(t, "memory_update", out.ResponseType)

	saved, err := prefs.Get(context.Background(), "maria")
	require.NoError(t, err)
	assert.Equal(t, "alta", saved.Confidence)
	assert.JSONEq(t, `{"moeda":"BRL"}`, string(saved.Preferences))
}

func TestProcessResponse_MemoryUpdateDefaultsClientID(t *testing.T) {
	svc, _, prefs, _, _ := newTestService(t)

	_, err := svc.ProcessResponse(context.Background(),
		`{"type":"memory_update","preferencias":{"som":"alto"}}`)
	require.NoError(t, err)

	_, err = prefs.Get(context.Background(), "user_preferences")
	assert.NoError(t, err)
}

func TestProcessResponse_HeuristicExtraction(t *testing.T) {
	svc, rec, _, _, _ := newTestService(t)

	out, err := svc.ProcessResponse(context.Background(),
		"Orçamento para casamento, 150 pessoas, 8 horas, precisamos de som e iluminação")
	require.NoError(t, err)

	assert.Equal(t, "budget_extracted", out.ResponseType)
	require.NotNil(t, out.Document)
	assert.InDelta(t, 500.0, out.Document.Totals.ItemsSubtotal, 1e-6)

	stats := rec.Stats()
	assert.Equal(t, 1, stats.PipelineMetrics["text_extraction_success"])
	assert.Equal(t, 1, stats.PipelineBreakdown["budgets_by_method"]["text_extraction"])
}

func TestProcessResponse_FreeTextPassthrough(t *testing.T) {
	svc, rec, _, _, _ := newTestService(t)

	out, err := svc.ProcessResponse(context.Background(), "Oi, tudo bem?")
	require.NoError(t, err)

	assert.Equal(t, "text_free", out.ResponseType)
	assert.Equal(t, "Oi, tudo bem?", out.Reply)
	assert.Nil(t, out.Document)
	assert.Equal(t, 1, rec.Stats().PipelineMetrics["text_extraction_failure"])
}

func TestEditAndLifecycle(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.ProcessResponse(context.Background(), structuredDraft(t))
	require.NoError(t, err)

	change, event, err := svc.EditField("itens.0.preco_unit", "R$ 400")
	require.NoError(t, err)
	assert.True(t, change.Changed)
	require.NotNil(t, event)
	assert.Equal(t, "/itens/0/preco_unit", event.Ops[0].Path)
	assert.InDelta(t, 840.0, svc.Document().Totals.GrandTotal, 1e-6)

	doc := svc.Discard()
	assert.InDelta(t, 630.0, doc.Totals.GrandTotal, 1e-6)

	doc, err = svc.AddEntry(domain.SectionFees)
	require.NoError(t, err)
	require.Len(t, doc.Fees, 1)
	doc, err = svc.RemoveEntry(domain.SectionFees, 0)
	require.NoError(t, err)
	assert.Empty(t, doc.Fees)

	svc.CloseDraft()
	assert.Nil(t, svc.Document())
	_, _, err = svc.EditField("meta.cliente", "Ana")
	assert.ErrorIs(t, err, domain.ErrNoDraft)
}

func TestExportAndEmailQuote(t *testing.T) {
	svc, _, _, storage, email := newTestService(t)

	_, err := svc.ProcessResponse(context.Background(), structuredDraft(t))
	require.NoError(t, err)

	result, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-bucket", result.Bucket)
	assert.Contains(t, result.DownloadURL, result.Key)
	assert.NotEmpty(t, storage.objects[result.Key])

	require.NoError(t, svc.EmailQuote(context.Background(), "maria@example.com"))
	require.Len(t, email.sent, 1)
	assert.Equal(t, "maria@example.com", email.sent[0].To)
	assert.Equal(t, "Maria Souza", email.sent[0].ClientName)
	assert.InDelta(t, 630.0, email.sent[0].GrandTotal, 1e-6)
	assert.Contains(t, email.sent[0].AttachmentURL, "https://signed.example/")
}

func TestExportWithoutDraft(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	_, err := svc.Export(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoDraft)
	assert.ErrorIs(t, svc.EmailQuote(context.Background(), "x@example.com"), domain.ErrNoDraft)
}

func TestQueueFeedsPipeline(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	q := svc.Queue()
	require.NoError(t, q.Push(session.TransportEvent{Kind: session.KindText, Text: structuredDraft(t)}))

	require.NotNil(t, svc.Document())
	assert.Equal(t, "Maria Souza", svc.Document().Meta.Client)
}

func TestResetSessionIssuesNewID(t *testing.T) {
	svc, rec, _, _, _ := newTestService(t)

	old := rec.SessionID()
	fresh := svc.ResetSession()
	assert.NotEqual(t, old, fresh)
	assert.Equal(t, fresh, rec.SessionID())
	assert.Zero(t, rec.Stats().TotalEdits)
}
