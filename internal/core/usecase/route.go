package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/core/ports"
)

// invoiceReviewThreshold is the invoice total above which the finance team
// reviews the document instead of it being archived.
const invoiceReviewThreshold = 10000.0

type RouteActionUseCase struct {
	store      ports.RecordStore
	dispatcher ports.ActionDispatcher
	now        func() time.Time
}

func NewRouteActionUseCase(store ports.RecordStore, dispatcher ports.ActionDispatcher) *RouteActionUseCase {
	return &RouteActionUseCase{
		store:      store,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// RouteAction selects one follow-up action for the document, dispatches it,
// and records the outcome. A non-empty explicitAction skips the analysis
// rules. Failed routing never stores a record or moves the status, but the
// returned record still carries the attempted action once one was selected.
func (uc *RouteActionUseCase) RouteAction(ctx context.Context, documentID, explicitAction string) (domain.ActionRecord, error) {
	state, err := uc.store.Get(ctx, documentID)
	if err != nil {
		return domain.ActionRecord{}, fmt.Errorf("fetch document by id: %w", err)
	}

	action, reason, err := uc.selectAction(state, explicitAction)
	if err != nil {
		return domain.ActionRecord{}, err
	}

	attempted := domain.ActionRecord{Action: action, DocumentID: documentID}

	ack, err := uc.dispatcher.Dispatch(ctx, action, documentID, reason)
	if err != nil {
		return attempted, fmt.Errorf("dispatch %s: %w", action, err)
	}

	record := domain.ActionRecord{
		Action:     action,
		DocumentID: documentID,
		Timestamp:  uc.now().UTC(),
		Success:    true,
		Details:    ack,
	}
	if err := uc.store.Store(ctx, documentID, record); err != nil {
		return attempted, fmt.Errorf("store action record: %w", err)
	}
	if err := uc.store.UpdateStatus(ctx, documentID, domain.StatusActionTriggered); err != nil {
		return attempted, fmt.Errorf("set status=action_triggered: %w", err)
	}
	return record, nil
}

func (uc *RouteActionUseCase) selectAction(state *domain.DocumentState, explicitAction string) (domain.Action, string, error) {
	if explicitAction != "" {
		action := domain.Action(explicitAction)
		if !knownAction(action) {
			return "", "", domain.WrapError(domain.ErrUnknownAction, "route action",
				fmt.Errorf("unknown action: %s", explicitAction))
		}
		return action, "Explicitly requested", nil
	}

	if state.Classification == nil {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "route action",
			fmt.Errorf("document %s has no classification", state.DocumentID))
	}

	switch state.Classification.Format {
	case domain.FormatEmail:
		return routeEmail(state)
	case domain.FormatPDF:
		return routePDF(state)
	case domain.FormatJSON:
		return routeJSON(state)
	default:
		return "", "", domain.WrapError(domain.ErrUnsupportedFormat, "route action",
			fmt.Errorf("unsupported document format: %s", state.Classification.Format))
	}
}

func routeEmail(state *domain.DocumentState) (domain.Action, string, error) {
	analysis := state.EmailAnalysis
	if analysis == nil {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "route email",
			fmt.Errorf("document %s has no email analysis", state.DocumentID))
	}

	if analysis.RecommendedAction == "Escalate" || analysis.Tone == "Angry" || analysis.Urgency == "High" {
		return domain.ActionEscalate, "Customer complaint requiring immediate attention", nil
	}
	if analysis.RecommendedAction == "Respond within 24 hours" {
		return domain.ActionRespond, "Response due within 24 hours", nil
	}
	return domain.ActionLog, "Routine email logged for reference", nil
}

func routePDF(state *domain.DocumentState) (domain.Action, string, error) {
	analysis := state.PDFAnalysis
	if analysis == nil {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "route pdf",
			fmt.Errorf("document %s has no pdf analysis", state.DocumentID))
	}

	if analysis.InvoiceData != nil && analysis.InvoiceData.Total > invoiceReviewThreshold {
		return domain.ActionReviewInvoice, "High-value invoice exceeding threshold", nil
	}
	if analysis.PolicyData != nil && len(analysis.PolicyData.Regulations) > 0 {
		return domain.ActionComplianceReview, "Policy document containing regulatory references", nil
	}
	return domain.ActionArchive, "Document archived after analysis", nil
}

func routeJSON(state *domain.DocumentState) (domain.Action, string, error) {
	analysis := state.JSONAnalysis
	if analysis == nil {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "route json",
			fmt.Errorf("document %s has no json analysis", state.DocumentID))
	}

	if !analysis.Validity.IsValid || len(analysis.Anomalies) > 0 {
		return domain.ActionTechnicalReview, "JSON anomalies or validation errors", nil
	}
	return domain.ActionProcess, "Valid JSON routed for processing", nil
}

func knownAction(action domain.Action) bool {
	switch action {
	case domain.ActionEscalate, domain.ActionRespond, domain.ActionReviewInvoice,
		domain.ActionComplianceReview, domain.ActionTechnicalReview,
		domain.ActionProcess, domain.ActionArchive, domain.ActionLog:
		return true
	}
	return false
}
