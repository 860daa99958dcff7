package install

import "testing"

func TestFilelistDocumentRoundTrip(t *testing.T) {
	original := []*PlanEntry{
		{Rel: "a", Src: "/shadow/a", Dst: "/root/a", SrcKind: FileKindRegular},
		{Rel: "b", Src: "/root/b", Dst: "/root/.STRAY-b", SrcKind: FileKindDirectory, synthetic: true},
	}

	doc := SerializeFilelistDocument("tx-123", original)
	if doc.TransactionID != "tx-123" {
		t.Fatalf("expected transaction id preserved, got %q", doc.TransactionID)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(doc.Records))
	}

	id, restored := DeserializeFilelistDocument(doc)
	if id != "tx-123" {
		t.Fatalf("expected restored transaction id tx-123, got %q", id)
	}
	if len(restored) != 2 {
		t.Fatalf("expected 2 restored entries, got %d", len(restored))
	}
	if restored[0].Rel != "a" || restored[0].Src != "/shadow/a" || restored[0].SrcKind != FileKindRegular {
		t.Fatalf("unexpected restored entry 0: %+v", restored[0])
	}
	if !restored[1].IsSynthetic() {
		t.Fatal("expected entry 1 to round-trip as synthetic")
	}
}
