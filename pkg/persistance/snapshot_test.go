package persistance

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/leadpilot/filter-engine/pkg/facet"
)

func testSchema() facet.Schema {
	return facet.Schema{
		{Name: "industry", Kind: facet.KindBooleanSet, Param: "industry", Options: []string{"Tech", "Finance", "Retail"}},
		{Name: "visited-preset", Kind: facet.KindExclusiveChoice, Options: []string{"Last week", "Last 30 days"}},
		{Name: "visited", Kind: facet.KindDateRange, FromParam: "from_date", ToParam: "to_date", LinkedTo: "visited-preset"},
		{Name: "location", Kind: facet.KindTagList, Param: "location"},
		{Name: "search", Kind: facet.KindFreeText, Param: "search"},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	schema := testSchema()
	s := facet.NewStore(schema)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	s.Set("industry", facet.BoolSet{"Tech": true, "Retail": true})
	s.Set("visited", facet.DateRange{From: &from, To: &to})
	s.AppendTag("location", "Austin, TX")
	s.Set("search", facet.FreeText("acme"))

	data, err := MarshalSnapshot(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := UnmarshalSnapshot(data, schema)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(s.Tags(), restored.Tags()) {
		t.Fatalf("round trip changed the selection:\n%v\n%v", s.Tags(), restored.Tags())
	}
	got := restored.Get("visited").(facet.DateRange)
	if !got.From.Equal(from) || !got.To.Equal(to) {
		t.Fatalf("date range changed: %v", got)
	}
}

func TestSnapshotDropsStaleLabels(t *testing.T) {
	schema := testSchema()
	blob := []byte(`{"industry":{"Tech":true,"Retired-Category":true}}`)

	restored, err := UnmarshalSnapshot(blob, schema)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	set := restored.Get("industry").(facet.BoolSet)
	if !set["Tech"] {
		t.Error("current label should survive")
	}
	if set["Retired-Category"] {
		t.Error("stale label should be dropped")
	}
}

func TestSnapshotDropsStaleChoice(t *testing.T) {
	blob := []byte(`{"visited-preset":"Last quarter"}`)
	restored, err := UnmarshalSnapshot(blob, testSchema())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !restored.Get("visited-preset").Empty() {
		t.Fatal("choice outside the enumeration should be dropped")
	}
}

func TestSnapshotUnknownFacetIgnored(t *testing.T) {
	blob := []byte(`{"ancient-facet":"x","search":"acme"}`)
	restored, err := UnmarshalSnapshot(blob, testSchema())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := restored.Get("search"); got.(facet.FreeText) != "acme" {
		t.Fatalf("known facet lost: %v", got)
	}
}

func TestSnapshotPresetWinsOnRestore(t *testing.T) {
	blob := []byte(`{"visited-preset":"Last week","visited":{"from":1704067200,"to":1706745599}}`)
	restored, err := UnmarshalSnapshot(blob, testSchema())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Get("visited-preset").Empty() {
		t.Error("preset should win the exclusion tie")
	}
	if !restored.Get("visited").Empty() {
		t.Error("custom range should yield to the preset")
	}
}

func TestSnapshotShapeMismatchDropsEntry(t *testing.T) {
	blob := []byte(`{"industry":"Tech","search":"acme"}`)
	restored, err := UnmarshalSnapshot(blob, testSchema())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !restored.Get("industry").Empty() {
		t.Error("mis-shaped entry should be dropped")
	}
	if restored.Get("search").(facet.FreeText) != "acme" {
		t.Error("well-formed entries should survive")
	}
}

func TestAdapterMalformedSnapshotTreatedAsAbsent(t *testing.T) {
	storage := NewMemoryStorage()
	adapter := NewAdapter(storage, nil)
	ctx := context.Background()

	if err := storage.Save(ctx, "filters", []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := adapter.Load(ctx, "filters", testSchema())
	if err != nil {
		t.Fatalf("load must not fail on malformed data: %v", err)
	}
	if store != nil {
		t.Fatal("malformed snapshot should restore as absent")
	}
}

func TestAdapterLoadAbsentKey(t *testing.T) {
	adapter := NewAdapter(NewMemoryStorage(), nil)
	store, err := adapter.Load(context.Background(), "filters", testSchema())
	if err != nil || store != nil {
		t.Fatalf("absent key should be (nil, nil), got %v %v", store, err)
	}
}

func TestAdapterSaveLoadDelete(t *testing.T) {
	storage := NewMemoryStorage()
	adapter := NewAdapter(storage, nil)
	ctx := context.Background()
	schema := testSchema()

	s := facet.NewStore(schema)
	s.Set("search", facet.FreeText("acme"))
	if err := adapter.Save(ctx, "filters", s); err != nil {
		t.Fatalf("save: %v", err)
	}
	restored, err := adapter.Load(ctx, "filters", schema)
	if err != nil || restored == nil {
		t.Fatalf("load: %v %v", restored, err)
	}
	if restored.Get("search").(facet.FreeText) != "acme" {
		t.Fatal("selection lost")
	}

	if err := adapter.Delete(ctx, "filters"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if storage.Has("filters") {
		t.Fatal("key should be gone")
	}
}
