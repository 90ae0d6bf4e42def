package tenancy

import (
	"context"
	"testing"
)

func TestWithAgencyIDAndAgencyIDFromContext(t *testing.T) {
	ctx := WithAgencyID(context.Background(), "agency-123")

	got, ok := AgencyIDFromContext(ctx)
	if !ok {
		t.Fatalf("expected agency id to be present")
	}
	if got != "agency-123" {
		t.Fatalf("expected agency-123, got %s", got)
	}
}

func TestAgencyIDFromContext_EmptyOrMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := AgencyIDFromContext(ctx); ok {
		t.Fatalf("expected missing agency id to return false")
	}

	ctx = context.WithValue(ctx, agencyKey, 42)
	if _, ok := AgencyIDFromContext(ctx); ok {
		t.Fatalf("expected non-string agency id to return false")
	}

	ctx = WithAgencyID(context.Background(), "")
	if _, ok := AgencyIDFromContext(ctx); ok {
		t.Fatalf("expected empty agency id to return false")
	}
}
