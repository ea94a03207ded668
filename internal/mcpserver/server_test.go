package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/sprout/internal/apperr"
	"github.com/starford/sprout/internal/gardenservice"
	"github.com/starford/sprout/internal/kvstore"
	"github.com/starford/sprout/internal/models"
	"github.com/starford/sprout/internal/plantstore"
	"github.com/starford/sprout/internal/profile"
	"github.com/starford/sprout/internal/recommend"
	"github.com/starford/sprout/internal/testutil"
)

const reply = `[
	{"name":"Snake Plant","scientificName":"Dracaena trifasciata","benefits":"Air purification"},
	{"name":"Pothos","scientificName":"Epipremnum aureum","benefits":"Hardy"}
]`

func testServer(t *testing.T) (*Server, *plantstore.Store, *profile.Store) {
	t.Helper()
	return testServerOn(t, testutil.KV(t))
}

func testServerOn(t *testing.T, kv kvstore.Store) (*Server, *plantstore.Store, *profile.Store) {
	t.Helper()
	logger := testutil.Logger()
	plants, err := plantstore.Load(context.Background(), kv, logger)
	if err != nil {
		t.Fatal(err)
	}
	prof := profile.NewStore(kv, logger)
	rec := recommend.NewService(&testutil.Generator{Text: reply}, testutil.StampEnricher{}, logger)
	svc := gardenservice.New(plants, prof, rec, 0, logger)
	return New(svc, "test"), plants, prof
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "recommend_plants":
		result, err = srv.recommendPlants(ctx, req)
	case "search_plants":
		result, err = srv.searchPlants(ctx, req)
	case "list_saved_plants":
		result, err = srv.listSavedPlants(ctx, req)
	case "save_plant":
		result, err = srv.savePlant(ctx, req)
	case "remove_plant":
		result, err = srv.removePlant(ctx, req)
	case "get_care_tips":
		result, err = srv.getCareTips(ctx, req)
	case "get_plant_contract":
		result, err = srv.getPlantContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSaveListRemove(t *testing.T) {
	srv, plants, _ := testServer(t)

	r := callTool(t, srv, "list_saved_plants", map[string]interface{}{})
	if text := resultText(r); text != "no saved plants" {
		t.Errorf("empty list = %q", text)
	}

	args := map[string]interface{}{
		"name":           "Snake Plant",
		"scientificName": "Dracaena trifasciata",
		"benefits":       "Air purification; Low maintenance",
	}
	r = callTool(t, srv, "save_plant", args)
	if text := resultText(r); text != "saved: Dracaena trifasciata" {
		t.Errorf("save = %q", text)
	}
	r = callTool(t, srv, "save_plant", args)
	if text := resultText(r); text != "already saved: Dracaena trifasciata" {
		t.Errorf("second save = %q", text)
	}

	p, ok := plants.Get("Dracaena trifasciata")
	if !ok {
		t.Fatal("plant not in store")
	}
	if !p.Benefits.IsList() || len(p.Benefits.Values()) != 2 {
		t.Errorf("benefits = %v", p.Benefits.Values())
	}

	r = callTool(t, srv, "list_saved_plants", map[string]interface{}{})
	var views []gardenservice.PlantView
	if err := json.Unmarshal([]byte(resultText(r)), &views); err != nil {
		t.Fatalf("list json: %v", err)
	}
	if len(views) != 1 || views[0].BenefitsText != "Air purification, Low maintenance" {
		t.Errorf("list = %+v", views)
	}

	r = callTool(t, srv, "remove_plant", map[string]interface{}{"scientificName": "Dracaena trifasciata"})
	if text := resultText(r); text != "removed: Dracaena trifasciata" {
		t.Errorf("remove = %q", text)
	}
	r = callTool(t, srv, "remove_plant", map[string]interface{}{"scientificName": "Dracaena trifasciata"})
	if !r.IsError {
		t.Error("expected error removing a missing plant")
	}
}

func TestSavePlantMissingArgs(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "save_plant", map[string]interface{}{"name": "x"})
	if !r.IsError {
		t.Error("expected error without scientificName")
	}
	r = callTool(t, srv, "save_plant", map[string]interface{}{"name": "x", "scientificName": "y", "benefits": " "})
	if !r.IsError {
		t.Error("expected error with blank benefits")
	}
}

func TestGetCareTips(t *testing.T) {
	srv, _, _ := testServer(t)
	callTool(t, srv, "save_plant", map[string]interface{}{
		"name": "Pothos", "scientificName": "Epipremnum aureum", "benefits": "Hardy", "water": "Weekly",
	})

	r := callTool(t, srv, "get_care_tips", map[string]interface{}{"scientificName": "Epipremnum aureum"})
	var got struct {
		CareTips models.CareTips `json:"careTips"`
		ShopURL  string          `json:"shopUrl"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("care tips json: %v", err)
	}
	if got.CareTips.Water != "Weekly" || got.CareTips.Humidity != "Average household humidity" {
		t.Errorf("care tips = %+v", got.CareTips)
	}
	if !strings.Contains(got.ShopURL, "pothos+buy+online") {
		t.Errorf("shop url = %q", got.ShopURL)
	}

	r = callTool(t, srv, "get_care_tips", map[string]interface{}{"scientificName": "epipremnum aureum"})
	if !r.IsError {
		t.Error("lookup is exact; expected error")
	}
}

func TestRecommendRequiresProfile(t *testing.T) {
	srv, _, prof := testServer(t)

	r := callTool(t, srv, "recommend_plants", map[string]interface{}{})
	if !r.IsError || !strings.Contains(resultText(r), "preference form") {
		t.Errorf("recommend before form = %q", resultText(r))
	}

	if err := prof.Submit(context.Background(), models.DefaultPreferenceProfile()); err != nil {
		t.Fatal(err)
	}
	r = callTool(t, srv, "recommend_plants", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("recommend = %q", resultText(r))
	}
	if !strings.Contains(resultText(r), "Epipremnum aureum") {
		t.Errorf("recommend = %q", resultText(r))
	}
}

func TestSearchPlants(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "search_plants", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without query")
	}

	r = callTool(t, srv, "search_plants", map[string]interface{}{"query": "hardy plants", "page": 1})
	var page gardenservice.SearchPage
	if err := json.Unmarshal([]byte(resultText(r)), &page); err != nil {
		t.Fatalf("search json: %v", err)
	}
	if page.Total != 2 || page.Page != 1 {
		t.Errorf("page = %+v", page)
	}
}

func TestPlantContract(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_plant_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "scientificName") {
		t.Error("contract missing identity field")
	}
}

func TestRemoveReportsStorageFailure(t *testing.T) {
	kv := &testutil.FailingKV{Store: testutil.KV(t)}
	srv, _, _ := testServerOn(t, kv)

	callTool(t, srv, "save_plant", map[string]interface{}{
		"name": "Snake Plant", "scientificName": "Dracaena trifasciata", "benefits": "Air purification",
	})

	r := callTool(t, srv, "remove_plant", map[string]interface{}{"scientificName": "Missing"})
	if !r.IsError || resultText(r) != "not saved: Missing" {
		t.Errorf("missing remove = %q", resultText(r))
	}

	kv.FailWrites(true)
	r = callTool(t, srv, "remove_plant", map[string]interface{}{"scientificName": "Dracaena trifasciata"})
	if !r.IsError {
		t.Fatal("expected error when storage fails")
	}
	if text := resultText(r); text != apperr.UserMessage(testutil.ErrWriteFailed) {
		t.Errorf("storage failure = %q", text)
	}

	r = callTool(t, srv, "get_care_tips", map[string]interface{}{"scientificName": "Dracaena trifasciata"})
	if r.IsError {
		t.Errorf("care tips after failed remove = %q", resultText(r))
	}
}
