package natsadapter

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
)

func TestOrderUpdatedHandler(t *testing.T) {
	tests := []struct {
		name string
		msg  *nats.Msg
		want string
	}{
		{"id from subject", &nats.Msg{Subject: SubjectOrderUpdatedPrefix + "ORD-1"}, "ORD-1"},
		{"id from payload", &nats.Msg{Subject: SubjectOrderUpdatedPrefix, Data: []byte("ORD-2")}, "ORD-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			h := orderUpdatedHandler(context.Background(), func(_ context.Context, orderID string) error {
				got = append(got, orderID)
				return nil
			})
			h(tt.msg)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("expected [%s], got %v", tt.want, got)
			}
		})
	}
}

func TestOrderUpdatedHandler_FailureStillInvokesOnce(t *testing.T) {
	calls := 0
	h := orderUpdatedHandler(context.Background(), func(context.Context, string) error {
		calls++
		return errors.New("cache down")
	})
	h(&nats.Msg{Subject: SubjectOrderUpdatedPrefix + "ORD-3"})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

