// Package dispatch submits routed actions to downstream business systems.
// Calls are simulated: the request is logged and a synthetic acknowledgement
// is returned, shaped exactly like the real integration would answer.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vporoshin/docflow/internal/core/domain"
	"github.com/vporoshin/docflow/internal/infrastructure/resilience"
)

// endpoints maps each action to the downstream path it is submitted to.
// The log action is handled locally and has no endpoint.
var endpoints = map[domain.Action]string{
	domain.ActionEscalate:         "/crm/escalate",
	domain.ActionRespond:          "/crm/schedule-response",
	domain.ActionReviewInvoice:    "/finance/review",
	domain.ActionComplianceReview: "/compliance/review",
	domain.ActionTechnicalReview:  "/tech/review",
	domain.ActionProcess:          "/workflow/process",
	domain.ActionArchive:          "/archive/store",
}

type Dispatcher struct {
	baseURL string
	exec    *resilience.Executor
	log     *slog.Logger
	now     func() time.Time
}

func New(baseURL string, exec *resilience.Executor, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		baseURL: baseURL,
		exec:    exec,
		log:     log,
		now:     time.Now,
	}
}

// Dispatch submits the action for the document. The reason travels in the
// request payload so the receiving team sees why the document was routed.
func (d *Dispatcher) Dispatch(ctx context.Context, action domain.Action, documentID, reason string) (domain.DispatchAck, error) {
	if action == domain.ActionLog {
		d.log.InfoContext(ctx, "document_logged", "document_id", documentID, "reason", reason)
		return domain.DispatchAck{
			Status:    "logged",
			Message:   "Document logged for reference",
			Timestamp: d.now().UTC(),
		}, nil
	}

	endpoint, ok := endpoints[action]
	if !ok {
		return domain.DispatchAck{}, domain.WrapError(domain.ErrUnknownAction, "dispatch",
			fmt.Errorf("unknown action: %s", action))
	}

	var ack domain.DispatchAck
	err := d.exec.Execute(ctx, "dispatch_"+string(action), func(ctx context.Context) error {
		var callErr error
		ack, callErr = d.submit(ctx, endpoint, documentID, reason)
		return callErr
	}, classifyDispatchError)
	if err != nil {
		return domain.DispatchAck{}, domain.WrapError(domain.ErrTemporary, "dispatch", err)
	}
	return ack, nil
}

func (d *Dispatcher) submit(ctx context.Context, endpoint, documentID, reason string) (domain.DispatchAck, error) {
	d.log.InfoContext(ctx, "dispatch_request",
		"method", "POST",
		"url", d.baseURL+endpoint,
		"document_id", documentID,
		"reason", reason,
	)

	now := d.now().UTC()
	return domain.DispatchAck{
		Status:    "success",
		RequestID: "req_" + now.Format("20060102150405"),
		Message:   fmt.Sprintf("Action submitted to %s", endpoint),
		Timestamp: now,
	}, nil
}

func classifyDispatchError(err error) resilience.ErrorClassification {
	return resilience.ErrorClassification{
		Retryable:     domain.IsKind(err, domain.ErrTemporary),
		RecordFailure: true,
	}
}
