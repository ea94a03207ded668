package api

import (
	"github.com/starford/sprout/internal/gardenservice"
	"github.com/starford/sprout/internal/models"
)

// SubmitProfileRequest is the preference form body.
type SubmitProfileRequest = models.PreferenceProfile

// SavePlantRequest is the body for saving a plant.
type SavePlantRequest = models.Plant

// ProfileResponse is the preference form status with the allowed answers.
type ProfileResponse struct {
	gardenservice.ProfileState
	Options ProfileOptions `json:"options"`
}

// PlantView is a plant card in a response.
type PlantView = gardenservice.PlantView

// PlantDetailResponse is a saved plant with care tips.
type PlantDetailResponse = gardenservice.PlantDetail

// SearchResponse is one page of search results.
type SearchResponse = gardenservice.SearchPage

// PlantListResponse is the visible part of the saved-plant listing.
type PlantListResponse = gardenservice.SavedPage

// RecommendationsResponse wraps the home view suggestions.
type RecommendationsResponse struct {
	Plants []PlantView `json:"plants" validate:"required"`
}

// ProfileOptions lists the allowed preference form answers.
type ProfileOptions struct {
	Experience []any `json:"experience"`
	Light      []any `json:"light"`
	Space      []any `json:"space"`
	Purpose    []any `json:"purpose"`
}

func profileOptions() ProfileOptions {
	return ProfileOptions{
		Experience: models.ExperienceLevels,
		Light:      models.LightLevels,
		Space:      models.SpaceSizes,
		Purpose:    models.Purposes,
	}
}

// SavePlantResponse reports whether the plant was newly saved.
type SavePlantResponse struct {
	Added bool      `json:"added"`
	Plant PlantView `json:"plant"`
}

// ClearPlantsResponse reports how many saved plants were removed.
type ClearPlantsResponse struct {
	Removed int `json:"removed"`
}
