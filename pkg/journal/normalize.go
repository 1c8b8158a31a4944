package journal

import "fmt"

// Activity is one rendered, human-readable line derived from a journal event.
type Activity struct {
	Type     string
	Category string
	Text     string
	// Aggregate marks high-frequency, low-information types that the daily
	// aggregator collapses into a single summary line per day.
	Aggregate bool
	// Ship marks ship-status updates (fuel, hull, repairs). They update the
	// run's ship status instead of entering the daily history.
	Ship bool
}

type rule struct {
	category  string
	render    func(Event) string
	aggregate bool
	ship      bool
}

// Event types that are pure noise and must never surface in output.
var denylist = map[string]struct{}{
	"Music":      {},
	"Fileheader": {},
	"Shutdown":   {},
}

// catalog maps every known event discriminant to its category and rendering
// template. Fields missing from a record render as "Unknown" rather than
// failing the event.
var catalog = map[string]rule{
	// Travel
	"FSDJump": {category: "Travel", render: func(e Event) string {
		return fmt.Sprintf("Arrived in %s at %s.", e.Str("StarSystem"), e.Timestamp())
	}},
	"Location": {category: "Travel", render: func(e Event) string {
		return fmt.Sprintf("Currently at %s - %s at %s.", e.Str("StarSystem"), e.Str("Body"), e.Timestamp())
	}},
	"SupercruiseEntry": {category: "Travel", render: func(e Event) string {
		return fmt.Sprintf("Entered supercruise in %s at %s.", e.Str("StarSystem"), e.Timestamp())
	}},
	"SupercruiseExit": {category: "Travel", render: func(e Event) string {
		return fmt.Sprintf("Dropped from supercruise near %s at %s.", e.Str("Body"), e.Timestamp())
	}},

	// Docking
	"Docked": {category: "Docking", render: func(e Event) string {
		return fmt.Sprintf("Docked at %s at %s.", e.Str("StationName"), e.Timestamp())
	}},
	"Undocked": {category: "Docking", render: func(e Event) string {
		return fmt.Sprintf("Undocked from %s at %s.", e.Str("StationName"), e.Timestamp())
	}},

	// Combat
	"Bounty": {category: "Combat", render: func(e Event) string {
		return fmt.Sprintf("Claimed a bounty of %d credits at %s.", e.Int("Reward"), e.Timestamp())
	}},
	"ThargoidEncounter": {category: "Combat", render: func(e Event) string {
		return fmt.Sprintf("Encountered a Thargoid vessel at %s.", e.Timestamp())
	}},
	"Died": {category: "Combat", render: func(e Event) string {
		return fmt.Sprintf("Ship destroyed at %s.", e.Timestamp())
	}},

	// Trade
	"MarketBuy": {category: "Trade", render: func(e Event) string {
		return fmt.Sprintf("Purchased %dx %s for trading at %s.", e.Int("Count"), e.Str("Type"), e.Timestamp())
	}},
	"MarketSell": {category: "Trade", render: func(e Event) string {
		return fmt.Sprintf("Sold %dx %s for %d credits at %s.", e.Int("Count"), e.Str("Type"), e.Int("TotalSale"), e.Timestamp())
	}},

	// Mining
	"MiningRefined": {category: "Mining", render: func(e Event) string {
		return fmt.Sprintf("Refined %s while mining at %s.", e.Str("Type"), e.Timestamp())
	}},

	// Missions
	"MissionAccepted": {category: "Missions", render: func(e Event) string {
		return fmt.Sprintf("Accepted mission: %s at %s.", e.Str("Name"), e.Timestamp())
	}},
	"MissionCompleted": {category: "Missions", render: func(e Event) string {
		return fmt.Sprintf("Completed mission: %s, earning %d credits at %s.", e.Str("Name"), e.Int("Reward"), e.Timestamp())
	}},

	// Materials
	"Materials": {category: "Materials", render: func(e Event) string {
		return fmt.Sprintf("Gathered materials: %d Raw, %d Encoded, %d Manufactured.",
			e.Count("Raw"), e.Count("Encoded"), e.Count("Manufactured"))
	}},
	"MaterialCollected": {category: "Materials", render: func(e Event) string {
		return fmt.Sprintf("Collected %dx %s at %s.", e.Int("Count"), e.Str("Name"), e.Timestamp())
	}},

	// Ship status
	"Repair": {category: "Ship", ship: true, render: func(e Event) string {
		return fmt.Sprintf("Repaired %s at %s.", e.Str("Item"), e.Timestamp())
	}},
	"FuelScoop": {category: "Ship", ship: true, render: func(e Event) string {
		return fmt.Sprintf("Fuel at %s tons after scooping at %s.", e.Num("Total"), e.Timestamp())
	}},
	"HullDamage": {category: "Ship", ship: true, render: func(e Event) string {
		return fmt.Sprintf("Hull integrity at %s%% at %s.", e.Num("Health"), e.Timestamp())
	}},
	"RefuelAll": {category: "Ship", ship: true, render: func(e Event) string {
		return fmt.Sprintf("Refuelled ship at %s.", e.Timestamp())
	}},

	// Exploration (high frequency, aggregated per day)
	"Scan": {category: "Exploration", aggregate: true, render: func(e Event) string {
		return fmt.Sprintf("Scanned %s at %s.", e.Str("BodyName"), e.Timestamp())
	}},
	"FSSDiscoveryScan": {category: "Exploration", aggregate: true, render: func(e Event) string {
		return fmt.Sprintf("Discovery scan found %d bodies at %s.", e.Int("BodyCount"), e.Timestamp())
	}},

	// Comms (high frequency, aggregated per day)
	"ReceiveText": {category: "Comms", aggregate: true, render: func(e Event) string {
		return fmt.Sprintf("Message from %s: %s", e.Str("From"), e.Str("Message"))
	}},
}

// Normalize turns a raw event into at most one categorized activity. Denylisted
// types yield nothing; types outside the catalog fall back to a generic line so
// unknown events stay visible for later reclassification.
func Normalize(e Event) (Activity, bool) {
	typ := e.Type()
	if _, denied := denylist[typ]; denied {
		return Activity{}, false
	}
	r, known := catalog[typ]
	if !known {
		return Activity{
			Type:     typ,
			Category: "Other",
			Text:     fmt.Sprintf("%s event at %s.", typ, e.Timestamp()),
		}, true
	}
	return Activity{
		Type:      typ,
		Category:  r.category,
		Text:      r.render(e),
		Aggregate: r.aggregate,
		Ship:      r.ship,
	}, true
}
