package inventory

import "franchise-inventory/internal/models"

// DefaultEmbeddedProductLimit is the embedded list size at which new
// products of a branch start going to the separated store.
const DefaultEmbeddedProductLimit = 100

// DecideStrategy picks where the next product of a branch is stored, given
// how many products the branch already embeds. It is consulted at creation
// time only; products already embedded stay embedded.
func DecideStrategy(embeddedCount, limit int) models.StorageStrategy {
	if embeddedCount < limit {
		return models.StrategyEmbedded
	}
	return models.StrategySeparated
}
