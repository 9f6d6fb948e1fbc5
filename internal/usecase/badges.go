package usecase

import "ShipQuote/internal/domain/models"

// AssignBadges marks the cheapest and fastest quote in place. Price ties go
// to the first quote in carrier order; speed ties go to the cheaper quote.
func AssignBadges(quotes []models.Quote) {
	if len(quotes) == 0 {
		return
	}

	cheapest := 0
	for i := 1; i < len(quotes); i++ {
		if quotes[i].Price.LessThan(quotes[cheapest].Price) {
			cheapest = i
		}
	}

	fastest := 0
	for i := 1; i < len(quotes); i++ {
		switch {
		case quotes[i].EstimatedDays < quotes[fastest].EstimatedDays:
			fastest = i
		case quotes[i].EstimatedDays == quotes[fastest].EstimatedDays &&
			quotes[i].Price.LessThan(quotes[fastest].Price):
			fastest = i
		}
	}

	quotes[cheapest].IsCheapest = true
	quotes[fastest].IsFastest = true
}
