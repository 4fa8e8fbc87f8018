package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"orcavox/internal/analytics"
	"orcavox/internal/config"
	"orcavox/internal/domain"
	"orcavox/internal/editor"
	"orcavox/internal/export"
	"orcavox/internal/parser"
	"orcavox/internal/port"
	"orcavox/internal/session"
)

// defaultClientID keys preference updates that arrive without an explicit
// client identifier.
const defaultClientID = "user_preferences"

// ProcessOutcome describes what one model response did to the session.
type ProcessOutcome struct {
	ResponseType string                 `json:"response_type"`
	Method       string                 `json:"method,omitempty"`
	Document     *domain.BudgetDocument `json:"document,omitempty"`
	StatusText   string                 `json:"status_text,omitempty"`
	Reply        string                 `json:"reply,omitempty"`
}

// ExportResult carries the stored location of an exported quote.
type ExportResult struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	DownloadURL string `json:"download_url"`
}

// BudgetService is the orchestrator over the whole response pipeline:
// routing, document lifecycle, edit tracking, analytics, export and
// delivery.
type BudgetService interface {
	ProcessResponse(ctx context.Context, text string) (*ProcessOutcome, error)
	Document() *domain.BudgetDocument
	EditField(path, value string) (*domain.FieldChange, *editor.PatchEvent, error)
	AddEntry(section domain.Section) (*domain.BudgetDocument, error)
	RemoveEntry(section domain.Section, index int) (*domain.BudgetDocument, error)
	Commit() *domain.BudgetDocument
	Discard() *domain.BudgetDocument
	CloseDraft()
	ResetSession() string
	Export(ctx context.Context) (*ExportResult, error)
	EmailQuote(ctx context.Context, to string) error
	Stats() analytics.Stats
	Report() analytics.Report
	Queue() *session.Queue
	SetPatchSink(sink func(editor.PatchEvent))
}

type budgetService struct {
	mu      sync.Mutex
	cfg     *config.Config
	router  *parser.Router
	tracker *editor.Tracker
	rec     *analytics.Recorder
	queue   *session.Queue
	prefs   port.PreferenceStore
	storage port.ObjectStorage
	email   port.EmailSender
}

// NewBudgetService wires the pipeline together. prefs, storage and email
// may be nil in reduced deployments; the operations needing them fail
// with a descriptive error instead.
func NewBudgetService(
	cfg *config.Config,
	rec *analytics.Recorder,
	prefs port.PreferenceStore,
	storage port.ObjectStorage,
	email port.EmailSender,
) BudgetService {
	s := &budgetService{
		cfg:     cfg,
		router:  parser.NewRouter(rec),
		tracker: editor.NewTracker(rec),
		rec:     rec,
		prefs:   prefs,
		storage: storage,
		email:   email,
	}
	s.queue = session.NewQueue(func(text string) {
		if _, err := s.ProcessResponse(context.Background(), text); err != nil {
			log.Printf("budgetService: processing queued text: %v", err)
		}
	}, nil)
	return s
}

// ProcessResponse runs one raw model response through the full pipeline.
// It only returns an error for infrastructure failures (e.g. the
// preference store); parse failures always degrade to a usable outcome.
func (s *budgetService) ProcessResponse(ctx context.Context, text string) (*ProcessOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		s.rec.RecordFieldEdit("response_processing_time", nil,
			float64(time.Since(start))/float64(time.Millisecond))
	}()

	outcome := s.router.Parse(text)

	if env := outcome.Envelope; env != nil && env.Type != parser.TypeUnrecognized {
		return s.handleEnvelope(ctx, env, outcome.Method)
	}

	if outcome.Extracted != nil {
		s.rec.RecordFieldEdit("text_extraction_success", nil, true)
		s.tracker.Reset(outcome.Extracted)
		s.rec.ResetEdits()
		s.rec.RecordFieldEdit("budget_generated", nil, analytics.GeneratedInfo{
			ItemsCount: len(outcome.Extracted.Items),
			TotalValue: outcome.Extracted.Totals.GrandTotal,
			Method:     "text_extraction",
		})
		s.rec.RecordFieldEdit("ai_response_type", nil, "budget_extracted")
		return &ProcessOutcome{
			ResponseType: "budget_extracted",
			Method:       outcome.Method,
			Document:     s.tracker.Document(),
		}, nil
	}

	s.rec.RecordFieldEdit("text_extraction_success", nil, false)
	s.rec.RecordFieldEdit("ai_response_type", nil, "text_free")
	return &ProcessOutcome{
		ResponseType: "text_free",
		Method:       outcome.Method,
		Reply:        text,
	}, nil
}

func (s *budgetService) handleEnvelope(ctx context.Context, env *parser.Envelope, method string) (*ProcessOutcome, error) {
	s.rec.RecordFieldEdit("ai_response_type", nil, string(env.Type))

	switch env.Type {
	case parser.TypeBudgetDraft:
		s.tracker.Reset(env.Draft)
		s.rec.ResetEdits()
		s.rec.RecordFieldEdit("budget_generated", nil, analytics.GeneratedInfo{
			ItemsCount: len(env.Draft.Items),
			TotalValue: env.Draft.Totals.GrandTotal,
			Method:     "structured",
		})
		return &ProcessOutcome{
			ResponseType: string(env.Type),
			Method:       method,
			Document:     s.tracker.Document(),
		}, nil

	case parser.TypeBudgetPartial:
		doc := s.tracker.Document()
		if doc == nil {
			doc = domain.NewSkeleton()
			s.tracker.Reset(doc)
		}
		if err := parser.MergePartial(doc, env.Partial); err != nil {
			return nil, fmt.Errorf("merging partial update: %w", err)
		}
		// model-driven merges are not user edits; fold them into the
		// baseline so the diff surface stays about manual overrides
		s.tracker.Commit()
		return &ProcessOutcome{
			ResponseType: string(env.Type),
			Method:       method,
			Document:     s.tracker.Document(),
		}, nil

	case parser.TypeContractAnalysis:
		return &ProcessOutcome{
			ResponseType: string(env.Type),
			Method:       method,
			Document:     s.tracker.Document(),
			StatusText:   "Análise de contrato: " + env.Contract.Summary,
		}, nil

	case parser.TypePriceComparison:
		return &ProcessOutcome{
			ResponseType: string(env.Type),
			Method:       method,
			Document:     s.tracker.Document(),
			StatusText:   "Comparação de preços: " + env.Comparison.Message,
		}, nil

	case parser.TypeMemoryUpdate:
		if s.prefs == nil {
			return nil, fmt.Errorf("no preference store configured")
		}
		clientID := env.Memory.ClientID
		if clientID == "" {
			clientID = defaultClientID
		}
		err := s.prefs.Save(ctx, &domain.ClientPreferences{
			ClientID:    clientID,
			Preferences: env.Memory.Preferences,
			Patterns:    env.Memory.Patterns,
			Confidence:  env.Memory.Confidence,
		})
		if err != nil {
			return nil, fmt.Errorf("saving preferences: %w", err)
		}
		return &ProcessOutcome{
			ResponseType: string(env.Type),
			Method:       method,
			Document:     s.tracker.Document(),
			StatusText:   "Preferências do cliente atualizadas",
		}, nil
	}

	return nil, fmt.Errorf("unhandled response type %q", env.Type)
}

func (s *budgetService) Document() *domain.BudgetDocument {
	return s.tracker.Document()
}

func (s *budgetService) EditField(path, value string) (*domain.FieldChange, *editor.PatchEvent, error) {
	return s.tracker.Apply(path, value)
}

func (s *budgetService) AddEntry(section domain.Section) (*domain.BudgetDocument, error) {
	if err := s.tracker.Add(section); err != nil {
		return nil, err
	}
	return s.tracker.Document(), nil
}

func (s *budgetService) RemoveEntry(section domain.Section, index int) (*domain.BudgetDocument, error) {
	if err := s.tracker.Remove(section, index); err != nil {
		return nil, err
	}
	return s.tracker.Document(), nil
}

func (s *budgetService) Commit() *domain.BudgetDocument {
	s.tracker.Commit()
	return s.tracker.Document()
}

func (s *budgetService) Discard() *domain.BudgetDocument {
	s.tracker.Discard()
	return s.tracker.Document()
}

func (s *budgetService) CloseDraft() {
	s.tracker.Clear()
}

// ResetSession clears all analytics and returns the new session id. The
// working document is kept; closing it is a separate decision.
func (s *budgetService) ResetSession() string {
	s.rec.Reset()
	return s.rec.SessionID()
}

func (s *budgetService) Export(ctx context.Context) (*ExportResult, error) {
	doc := s.tracker.Document()
	if doc == nil {
		return nil, domain.ErrNoDraft
	}
	if s.storage == nil {
		return nil, fmt.Errorf("no object storage configured")
	}

	data, err := export.Bytes(doc, s.cfg.Export.SheetName)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s.xlsx", s.cfg.Export.KeyPrefix, uuid.New())
	log.Printf("budgetService.Export: uploading quote workbook %s (%d bytes)", key, len(data))

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.S3.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return nil, fmt.Errorf("uploading workbook: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.S3.Bucket, key, s.cfg.S3.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning workbook: %w", err)
	}

	return &ExportResult{Bucket: s.cfg.S3.Bucket, Key: key, DownloadURL: url}, nil
}

func (s *budgetService) EmailQuote(ctx context.Context, to string) error {
	doc := s.tracker.Document()
	if doc == nil {
		return domain.ErrNoDraft
	}
	if s.email == nil {
		return fmt.Errorf("no email sender configured")
	}

	result, err := s.Export(ctx)
	if err != nil {
		return err
	}

	log.Printf("budgetService.EmailQuote: sending quote to %s", to)
	return s.email.SendQuoteEmail(ctx, port.QuoteEmail{
		To:            to,
		ClientName:    doc.Meta.Client,
		EventName:     doc.Meta.Event,
		GrandTotal:    doc.Totals.GrandTotal,
		Currency:      doc.Meta.Currency,
		AttachmentURL: result.DownloadURL,
	})
}

func (s *budgetService) Stats() analytics.Stats {
	return s.rec.Stats()
}

func (s *budgetService) Report() analytics.Report {
	return s.rec.ShowAnalytics()
}

func (s *budgetService) Queue() *session.Queue {
	return s.queue
}

func (s *budgetService) SetPatchSink(sink func(editor.PatchEvent)) {
	s.tracker.SetPatchSink(sink)
}
