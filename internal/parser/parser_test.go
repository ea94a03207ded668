package parser

import (
	"testing"

	"github.com/starford/sprout/internal/models"
)

const snakePlantResponse = "```json\n[{\"name\":\"Snake Plant\",\"scientificName\":\"Dracaena trifasciata\",\"benefits\":\"Air purification\"}]\n```"

func TestParse_FencedEqualsUnfenced(t *testing.T) {
	inner := `[{"name":"Pothos","scientificName":"Epipremnum aureum","benefits":["Hardy"]}]`
	wrapped := []string{
		"```json\n" + inner + "\n```",
		"```\n" + inner + "\n```",
		"  " + inner + "  ",
	}
	want := Parse(inner)
	if len(want) != 1 {
		t.Fatalf("unwrapped parse len = %d, want 1", len(want))
	}
	for _, w := range wrapped {
		got := Parse(w)
		if len(got) != len(want) {
			t.Fatalf("Parse(%q) len = %d, want %d", w, len(got), len(want))
		}
		if got[0].(map[string]any)["name"] != "Pothos" {
			t.Errorf("Parse(%q) name = %v", w, got[0])
		}
	}
}

func TestParse_Unparsable(t *testing.T) {
	cases := []string{
		"",
		"Sure! Here are some plants:",
		"```json\n[{\"name\": \"Broken\"\n```",
		`{"name":"Not an array"}`,
		"null",
	}
	for _, c := range cases {
		got := Parse(c)
		if got == nil {
			t.Errorf("Parse(%q) = nil, want empty slice", c)
		}
		if len(got) != 0 {
			t.Errorf("Parse(%q) len = %d, want 0", c, len(got))
		}
	}
}

func TestValid(t *testing.T) {
	full := func() map[string]any {
		return map[string]any{
			"name":           "Snake Plant",
			"scientificName": "Dracaena trifasciata",
			"benefits":       "Air purification",
		}
	}
	if !Valid(full()) {
		t.Fatal("complete record rejected")
	}

	for _, field := range []string{"name", "scientificName", "benefits"} {
		missing := full()
		delete(missing, field)
		if Valid(missing) {
			t.Errorf("record without %s accepted", field)
		}
		empty := full()
		empty[field] = ""
		if Valid(empty) {
			t.Errorf("record with empty %s accepted", field)
		}
	}

	list := full()
	list["benefits"] = []any{}
	if !Valid(list) {
		t.Error("empty benefits list is truthy and should be accepted")
	}

	for _, v := range []any{nil, "text", 3.0, []any{full()}} {
		if Valid(v) {
			t.Errorf("non-object %v accepted", v)
		}
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	items := Parse(`[
		{"name":"A","scientificName":"A a","benefits":"x"},
		{"name":"","scientificName":"B b","benefits":"x"},
		{"name":"C","scientificName":"C c","benefits":["y"]}
	]`)
	got := Filter(items)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].(map[string]any)["name"] != "A" || got[1].(map[string]any)["name"] != "C" {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestDecode_DropsWrongTypes(t *testing.T) {
	items := Filter(Parse(`[
		{"name":"Snake Plant","scientificName":"Dracaena trifasciata","benefits":"Air purification","light":"Low"},
		{"name":7,"scientificName":"Numberus","benefits":"x"}
	]`))
	if len(items) != 2 {
		t.Fatalf("filter len = %d, want 2", len(items))
	}
	plants := Decode(items)
	if len(plants) != 1 {
		t.Fatalf("decode len = %d, want 1", len(plants))
	}
	if plants[0].Light != "Low" {
		t.Errorf("light = %q, want Low", plants[0].Light)
	}
}

func TestDecode_LenientCareFields(t *testing.T) {
	plants := Plants("```json\n[{\"name\":\"Snake Plant\",\"scientificName\":\"Dracaena trifasciata\",\"benefits\":\"Air purification\"," +
		"\"temperature\":21,\"humidity\":40.5,\"water\":false,\"light\":{\"level\":\"low\"},\"image\":3}]\n```")
	if len(plants) != 1 {
		t.Fatalf("len = %d, want 1", len(plants))
	}
	p := plants[0]
	if p.Temperature != "21" {
		t.Errorf("temperature = %q, want 21", p.Temperature)
	}
	if p.Humidity != "40.5" {
		t.Errorf("humidity = %q, want 40.5", p.Humidity)
	}
	if p.Water != "false" {
		t.Errorf("water = %q, want false", p.Water)
	}
	if p.Light != "" {
		t.Errorf("light = %q, want empty", p.Light)
	}
	if p.Image != "" {
		t.Errorf("image = %q, want empty", p.Image)
	}
}

func TestPlants_SnakePlantScenario(t *testing.T) {
	plants := Plants(snakePlantResponse)
	if len(plants) != 1 {
		t.Fatalf("len = %d, want 1", len(plants))
	}
	p := plants[0]
	if p.Name != "Snake Plant" || p.ScientificName != "Dracaena trifasciata" {
		t.Errorf("plant = %+v", p)
	}
	if models.FormatBenefits(p.Benefits) != "Air purification" {
		t.Errorf("benefits = %q", p.Benefits.String())
	}
	if p.Image != "" || p.AddedAt != "" {
		t.Error("parser must not populate image or addedAt")
	}
}
