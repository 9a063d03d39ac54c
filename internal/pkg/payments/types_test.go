package payments

import "testing"

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_42",
		"type": "payment_intent.payment_failed",
		"data": {
			"object": {
				"id": "pi_42",
				"metadata": {"type": "boost", "item_id": "abc"},
				"last_payment_error": {"message": "card declined"}
			}
		}
	}`)

	ev, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	if ev.ID != "evt_42" || ev.Type != EventPaymentIntentFailed {
		t.Fatalf("unexpected envelope: %+v", ev)
	}
	if ev.PaymentIntentID != "pi_42" {
		t.Fatalf("expected intent id pi_42, got %s", ev.PaymentIntentID)
	}
	if ev.FailureMessage != "card declined" {
		t.Fatalf("expected failure message, got %q", ev.FailureMessage)
	}
	if !ev.IsBoostPayment() {
		t.Fatal("expected boost payment metadata to be detected")
	}
}

func TestParseEventRejectsMalformed(t *testing.T) {
	for _, payload := range []string{
		``,
		`not json`,
		`{"type":"payment_intent.succeeded"}`,
		`{"id":"evt_1"}`,
	} {
		if _, err := ParseEvent([]byte(payload)); err == nil {
			t.Fatalf("expected payload %q to be rejected", payload)
		}
	}
}

func TestParseEventWithoutMetadata(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"id":"evt_1","type":"payment_method.attached","data":{"object":{"id":"pm_1"}}}`))
	if err != nil {
		t.Fatalf("ParseEvent returned error: %v", err)
	}
	if ev.IsBoostPayment() {
		t.Fatal("expected non-boost event")
	}
}
