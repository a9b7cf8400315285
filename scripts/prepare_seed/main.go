// Prepares a locality seed request for the admin API: reads raw localities
// from storage/localities.json and wraps them in the request envelope.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/app/requests"
)

func main() {
	data, err := os.ReadFile("storage/localities.json")
	if err != nil {
		log.Fatal("error reading localities.json:", err)
	}

	var localities []models.Locality
	if err := json.Unmarshal(data, &localities); err != nil {
		log.Fatal("error unmarshaling localities:", err)
	}

	fmt.Printf("loaded %d localities\n", len(localities))

	seedRequest := requests.SeedLocalitiesRequest{
		TableRevision:  "usps-pub28-2024",
		Data:           localities,
		RebuildIndexes: true,
	}

	output, err := json.MarshalIndent(seedRequest, "", "  ")
	if err != nil {
		log.Fatal("error marshaling seed request:", err)
	}

	if err := os.WriteFile("storage/seed_request.json", output, 0644); err != nil {
		log.Fatal("error writing seed request:", err)
	}

	fmt.Printf("wrote storage/seed_request.json with %d localities\n", len(localities))
}
