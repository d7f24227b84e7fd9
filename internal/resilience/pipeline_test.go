package resilience

import (
	"context"
	"testing"
	"time"

	apperrors "ecommerce/internal/errors"
)

func namedPolicy(name string, order *[]string) Policy {
	return func(next Operation) Operation {
		return func(ctx context.Context) Outcome {
			*order = append(*order, name)
			return next(ctx)
		}
	}
}

func TestChain_Order(t *testing.T) {
	var order []string

	p := Chain(
		namedPolicy("outer", &order),
		namedPolicy("middle", &order),
		namedPolicy("inner", &order),
	)

	outcome := Execute(context.Background(), p, func(ctx context.Context) Outcome {
		order = append(order, "op")
		return OK("value")
	})

	if outcome.Kind != KindOK {
		t.Fatalf("Expected OK outcome, got %s", outcome.Kind)
	}

	expected := []string{"outer", "middle", "inner", "op"}
	if len(order) != len(expected) {
		t.Fatalf("Expected call order %v, got %v", expected, order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("Expected call order %v, got %v", expected, order)
			break
		}
	}
}

func TestChain_Empty(t *testing.T) {
	p := Chain()

	outcome := Execute(context.Background(), p, func(ctx context.Context) Outcome {
		return OK("value")
	})

	if outcome.Kind != KindOK {
		t.Errorf("Expected OK outcome from empty chain, got %s", outcome.Kind)
	}
}

func TestTimeout_Expires(t *testing.T) {
	p := Timeout(10 * time.Millisecond)

	outcome := Execute(context.Background(), p, func(ctx context.Context) Outcome {
		select {
		case <-time.After(time.Second):
			return OK("too late")
		case <-ctx.Done():
			return Failure(ctx.Err())
		}
	})

	if !outcome.IsFailure() {
		t.Fatal("Expected failure on timeout")
	}
	if !apperrors.IsType(outcome.Err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error type, got %v", outcome.Err)
	}
}

func TestTimeout_FastCallPasses(t *testing.T) {
	p := Timeout(time.Second)

	outcome := Execute(context.Background(), p, func(ctx context.Context) Outcome {
		return OK("fast")
	})

	if outcome.Kind != KindOK {
		t.Errorf("Expected OK outcome, got %+v", outcome)
	}
}

func TestTimeout_CallerCancellationIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Timeout(time.Second)

	outcome := p(func(ctx context.Context) Outcome {
		return Failure(apperrors.Wrap(ctx.Err(), apperrors.ErrorTypeInternal, "cancelled"))
	})(ctx)

	// Отмена вызывающего не переклассифицируется в таймаут зависимости
	if apperrors.IsType(outcome.Err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected cancellation to keep its own type, got %v", outcome.Err)
	}
}

func TestFallback_SubstitutesOnUnavailability(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transient", apperrors.ErrDependencyUnavailable},
		{"timeout", apperrors.ErrDependencyTimeout},
		{"overload", apperrors.ErrDependencyOverloaded},
		{"bulkhead", apperrors.ErrBulkheadRejected},
		{"circuit open", apperrors.ErrCircuitOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Fallback(func() interface{} { return "placeholder" }, testLogEntry())

			outcome := Execute(context.Background(), p, func(ctx context.Context) Outcome {
				return Failure(tt.err)
			})

			if outcome.Kind != KindDegraded {
				t.Fatalf("Expected degraded outcome, got %s", outcome.Kind)
			}
			if outcome.Value != "placeholder" {
				t.Errorf("Expected placeholder value, got %v", outcome.Value)
			}
			if outcome.Err == nil {
				t.Error("Expected degraded outcome to keep the cause")
			}
		})
	}
}

func TestFallback_DoesNotHideAnswers(t *testing.T) {
	p := Fallback(func() interface{} { return "placeholder" }, testLogEntry())

	// NotFound это ответ зависимости заглушка не подставляется
	outcome := Execute(context.Background(), p, func(ctx context.Context) Outcome {
		return NotFound()
	})
	if outcome.Kind != KindNotFound {
		t.Errorf("Expected not found to pass through, got %s", outcome.Kind)
	}

	// Ошибка валидации тоже не подменяется
	outcome = Execute(context.Background(), p, func(ctx context.Context) Outcome {
		return Failure(apperrors.New(apperrors.ErrorTypeValidation, "bad"))
	})
	if outcome.Kind != KindFailure {
		t.Errorf("Expected validation failure to pass through, got %s", outcome.Kind)
	}
}

func TestOutcome_Kinds(t *testing.T) {
	tests := []struct {
		outcome   Outcome
		kind      Kind
		retryable bool
		counts    bool
	}{
		{OK("v"), KindOK, false, false},
		{NotFound(), KindNotFound, false, false},
		{Degraded("p", apperrors.ErrCircuitOpen), KindDegraded, false, false},
		{Failure(apperrors.ErrDependencyUnavailable), KindFailure, true, true},
		{Failure(apperrors.ErrDependencyTimeout), KindFailure, true, true},
		{Failure(apperrors.ErrDependencyOverloaded), KindFailure, false, true},
		{Failure(apperrors.ErrBulkheadRejected), KindFailure, false, false},
		{Failure(apperrors.ErrCircuitOpen), KindFailure, false, false},
		{Failure(apperrors.New(apperrors.ErrorTypeValidation, "bad")), KindFailure, false, false},
	}

	for _, tt := range tests {
		if tt.outcome.Kind != tt.kind {
			t.Errorf("Expected kind %s, got %s", tt.kind, tt.outcome.Kind)
		}
		if tt.outcome.Retryable() != tt.retryable {
			t.Errorf("Expected Retryable()=%v for %s outcome", tt.retryable, tt.kind)
		}
		if tt.outcome.CountsAsBreakerFailure() != tt.counts {
			t.Errorf("Expected CountsAsBreakerFailure()=%v for err %v", tt.counts, tt.outcome.Err)
		}
	}
}
