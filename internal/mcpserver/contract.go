package mcpserver

// PlantRecordContract describes the plant record that save_plant accepts and
// that every listing tool returns.
const PlantRecordContract = `# Sprout Plant Record

Saved plants are JSON objects with these fields:

| field          | required | notes                                              |
|----------------|----------|----------------------------------------------------|
| name           | yes      | common name                                        |
| scientificName | yes      | binomial name; identity key, compared exactly      |
| benefits       | yes      | a string or a list of strings                      |
| light          | no       | light requirements                                 |
| water          | no       | watering needs                                     |
| humidity       | no       | humidity preference                                |
| temperature    | no       | temperature range                                  |
| image          | no       | photo URL                                          |
| addedAt        | no       | ISO-8601 UTC timestamp, e.g. 2025-01-20T09:30:00.000Z |

## Rules

1. Saving a plant whose ` + "`scientificName`" + ` is already saved changes nothing.
2. ` + "`Ficus Lyrata`" + ` and ` + "`ficus lyrata`" + ` are different records.
3. Absent care fields are shown with defaults by ` + "`get_care_tips`" + `; the defaults are never stored.
4. Recommendations never include a species that is already saved (compared ignoring case).

## Example

` + "```json" + `
{
  "name": "Snake Plant",
  "scientificName": "Dracaena trifasciata",
  "benefits": ["Air purification", "Low maintenance"],
  "light": "Low to bright indirect light",
  "water": "Every 2-3 weeks"
}
` + "```" + `
`
