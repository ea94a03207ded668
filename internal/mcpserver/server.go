// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Sprout tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/sprout/internal/apperr"
	"github.com/starford/sprout/internal/gardenservice"
	"github.com/starford/sprout/internal/models"
)

const contractURI = "sprout://plant-record"

// Server wraps the MCP server with Sprout tools.
type Server struct {
	mcp *server.MCPServer
	svc *gardenservice.Service
}

// New creates a new MCP server with all Sprout tools registered.
func New(svc *gardenservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Sprout",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("recommend_plants",
		mcp.WithDescription("Suggest indoor plants for the user. Uses the preference form "+
			"when nothing is saved, otherwise plants similar to the first saved plant. "+
			"Saved species are never suggested."),
	), s.recommendPlants)

	s.mcp.AddTool(mcp.NewTool("search_plants",
		mcp.WithDescription("Suggest indoor plants matching a free-text description. Results are paged, 3 per page."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Description, e.g. 'pet friendly plants for a dark bathroom'")),
		mcp.WithNumber("page", mcp.Description("Page number, from 1")),
	), s.searchPlants)

	s.mcp.AddTool(mcp.NewTool("list_saved_plants",
		mcp.WithDescription("List every saved plant in the order it was saved."),
	), s.listSavedPlants)

	s.mcp.AddTool(mcp.NewTool("save_plant",
		mcp.WithDescription("Save a plant to the collection. Read the record contract first via "+
			"get_plant_contract or the "+contractURI+" resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Common name")),
		mcp.WithString("scientificName", mcp.Required(), mcp.Description("Binomial name")),
		mcp.WithString("benefits", mcp.Required(), mcp.Description("Key benefits; separate several with ';'")),
		mcp.WithString("light", mcp.Description("Light requirements")),
		mcp.WithString("water", mcp.Description("Watering needs")),
		mcp.WithString("humidity", mcp.Description("Humidity preference")),
		mcp.WithString("temperature", mcp.Description("Temperature range")),
		mcp.WithString("image", mcp.Description("Photo URL")),
	), s.savePlant)

	s.mcp.AddTool(mcp.NewTool("remove_plant",
		mcp.WithDescription("Remove a saved plant by its exact scientific name."),
		mcp.WithString("scientificName", mcp.Required(), mcp.Description("Scientific name of the saved plant")),
	), s.removePlant)

	s.mcp.AddTool(mcp.NewTool("get_care_tips",
		mcp.WithDescription("Care tips and a shopping link for a saved plant."),
		mcp.WithString("scientificName", mcp.Required(), mcp.Description("Scientific name of the saved plant")),
	), s.getCareTips)

	s.mcp.AddTool(mcp.NewTool("get_plant_contract",
		mcp.WithDescription("Returns the plant record format used by save_plant and every listing."),
	), s.getPlantContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Plant Record Contract",
			mcp.WithResourceDescription("Fields and identity rules of a saved plant."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(apperr.UserMessage(err))
}

// notSavedResult names the plant for a missing record and falls back to
// errorResult for anything else.
func notSavedResult(sci string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not saved: %s", sci))
	}
	return errorResult(err)
}

func (s *Server) recommendPlants(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plants, err := s.svc.Recommendations(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(plants)
}

func (s *Server) searchPlants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page := 1
	if p, err := req.RequireInt("page"); err == nil {
		page = p
	}
	res, err := s.svc.Search(ctx, query, page)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(res)
}

func (s *Server) listSavedPlants(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plants := s.svc.AllSaved()
	if len(plants) == 0 {
		return mcp.NewToolResultText("no saved plants"), nil
	}
	return jsonResult(plants)
}

func optional(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}

func benefitsArg(raw string) models.Benefits {
	if !strings.Contains(raw, ";") {
		return models.BenefitsText(strings.TrimSpace(raw))
	}
	var items []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return models.BenefitsList(items...)
}

func (s *Server) savePlant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sci, err := req.RequireString("scientificName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	benefits, err := req.RequireString("benefits")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := models.Plant{
		Name:           name,
		ScientificName: sci,
		Benefits:       benefitsArg(benefits),
		Light:          optional(req, "light"),
		Water:          optional(req, "water"),
		Humidity:       optional(req, "humidity"),
		Temperature:    optional(req, "temperature"),
		Image:          optional(req, "image"),
	}
	added, err := s.svc.Save(ctx, p)
	if err != nil {
		return errorResult(err), nil
	}
	sci = strings.TrimSpace(sci)
	if !added {
		return mcp.NewToolResultText(fmt.Sprintf("already saved: %s", sci)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", sci)), nil
}

func (s *Server) removePlant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sci, err := req.RequireString("scientificName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Remove(ctx, sci); err != nil {
		return notSavedResult(sci, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", sci)), nil
}

func (s *Server) getCareTips(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sci, err := req.RequireString("scientificName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Detail(sci)
	if err != nil {
		return notSavedResult(sci, err), nil
	}
	return jsonResult(struct {
		Name           string          `json:"name"`
		ScientificName string          `json:"scientificName"`
		CareTips       models.CareTips `json:"careTips"`
		ShopURL        string          `json:"shopUrl"`
	}{d.Name, d.ScientificName, d.CareTips, d.ShopURL})
}

func (s *Server) getPlantContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PlantRecordContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     PlantRecordContract,
		},
	}, nil
}
