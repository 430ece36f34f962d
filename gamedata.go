package main

/* ======================
   Building / Upgrade Registry
   ====================== */

// BuildingID indexes the closed set of building types. The save format uses
// the string keys from BuildingDef.Key, the engine always works with the
// dense index so a switch over buildings can be checked exhaustively.
type BuildingID int

const (
	BuildingCursor BuildingID = iota
	BuildingGrandma
	BuildingFarm
	BuildingMine
	BuildingFactory
	BuildingBank
	BuildingTemple
	BuildingWizard
	BuildingShipment
	BuildingAlchemy
	BuildingPortal
	BuildingTimeMachine
	buildingCount
)

type BuildingDef struct {
	ID              BuildingID
	Key             string
	Name            string
	BaseCost        float64
	BaseProduction  float64
	UnlockThreshold float64 // lifetime earnings needed before purchasable
}

var buildingDefs = [buildingCount]BuildingDef{
	{BuildingCursor, "cursor", "Junior Dev", 15, 0.1, 0},
	{BuildingGrandma, "grandma", "Freelancer", 100, 1, 10},
	{BuildingFarm, "farm", "Blog Writer", 1100, 8, 100},
	{BuildingMine, "mine", "Course Creator", 12000, 47, 1000},
	{BuildingFactory, "factory", "SaaS Founder", 130000, 260, 10000},
	{BuildingBank, "bank", "Agency Owner", 1400000, 1400, 100000},
	{BuildingTemple, "temple", "App Developer", 20000000, 7800, 1000000},
	{BuildingWizard, "wizard", "Tech Influencer", 330000000, 44000, 10000000},
	{BuildingShipment, "shipment", "Serial Entrepreneur", 5100000000, 260000, 100000000},
	{BuildingAlchemy, "alchemy", "VC-Backed Founder", 75000000000, 1600000, 1000000000},
	{BuildingPortal, "portal", "Tech Giant CEO", 1000000000000, 10000000, 10000000000},
	{BuildingTimeMachine, "timemachine", "Innovation Legend", 14000000000000, 65000000, 100000000000},
}

func BuildingByID(id BuildingID) BuildingDef {
	return buildingDefs[id]
}

func BuildingByKey(key string) (BuildingDef, bool) {
	for _, def := range buildingDefs {
		if def.Key == key {
			return def, true
		}
	}
	return BuildingDef{}, false
}

func AllBuildings() []BuildingDef {
	return buildingDefs[:]
}

// UpgradeID indexes the closed set of upgrades.
type UpgradeID int

const (
	UpgradeClick1 UpgradeID = iota
	UpgradeClick2
	UpgradeClick3
	UpgradeClick4
	UpgradeClick5
	UpgradeCursor1
	UpgradeCursor2
	UpgradeCursor3
	UpgradeGrandma1
	UpgradeGrandma2
	UpgradeGrandma3
	UpgradeFarm1
	UpgradeFarm2
	UpgradeMine1
	UpgradeMine2
	UpgradeFactory1
	UpgradeFactory2
	UpgradeGlobal1
	UpgradeGlobal2
	UpgradeGlobal3
	UpgradeGlobal4
	UpgradeGlobal5
	upgradeCount
)

type UpgradeKind int

const (
	// UpgradeKindClick multiplies click power. Requirement is a total-click
	// threshold.
	UpgradeKindClick UpgradeKind = iota
	// UpgradeKindBuilding multiplies one building's production. Requirement
	// is an owned count of the target building.
	UpgradeKindBuilding
	// UpgradeKindGlobal multiplies all production. No requirement.
	UpgradeKindGlobal
)

type UpgradeDef struct {
	ID          UpgradeID
	Key         string
	Name        string
	Kind        UpgradeKind
	Cost        float64
	Multiplier  float64
	Target      BuildingID // building upgrades only
	Requirement int        // clicks or target-building count
}

var upgradeDefs = [upgradeCount]UpgradeDef{
	{UpgradeClick1, "click1", "Better Keyboard", UpgradeKindClick, 100, 2, 0, 0},
	{UpgradeClick2, "click2", "Dual Monitors", UpgradeKindClick, 500, 2, 0, 1},
	{UpgradeClick3, "click3", "Standing Desk", UpgradeKindClick, 10000, 2, 0, 10},
	{UpgradeClick4, "click4", "AI Copilot", UpgradeKindClick, 100000, 2, 0, 25},
	{UpgradeClick5, "click5", "Neural Link", UpgradeKindClick, 10000000, 2, 0, 50},

	{UpgradeCursor1, "cursor1", "Git Basics", UpgradeKindBuilding, 100, 2, BuildingCursor, 1},
	{UpgradeCursor2, "cursor2", "Code Reviews", UpgradeKindBuilding, 500, 2, BuildingCursor, 5},
	{UpgradeCursor3, "cursor3", "Senior Mentorship", UpgradeKindBuilding, 50000, 2, BuildingCursor, 25},

	{UpgradeGrandma1, "grandma1", "Portfolio Site", UpgradeKindBuilding, 1000, 2, BuildingGrandma, 1},
	{UpgradeGrandma2, "grandma2", "Client Pipeline", UpgradeKindBuilding, 5000, 2, BuildingGrandma, 5},
	{UpgradeGrandma3, "grandma3", "Referral Network", UpgradeKindBuilding, 500000, 2, BuildingGrandma, 25},

	{UpgradeFarm1, "farm1", "SEO Skills", UpgradeKindBuilding, 11000, 2, BuildingFarm, 1},
	{UpgradeFarm2, "farm2", "Email List", UpgradeKindBuilding, 55000, 2, BuildingFarm, 5},

	{UpgradeMine1, "mine1", "Video Production", UpgradeKindBuilding, 120000, 2, BuildingMine, 1},
	{UpgradeMine2, "mine2", "Course Platform", UpgradeKindBuilding, 600000, 2, BuildingMine, 5},

	{UpgradeFactory1, "factory1", "Payment Gateway", UpgradeKindBuilding, 1300000, 2, BuildingFactory, 1},
	{UpgradeFactory2, "factory2", "Auto-Scaling", UpgradeKindBuilding, 6500000, 2, BuildingFactory, 5},

	{UpgradeGlobal1, "global1", "Premium Coffee", UpgradeKindGlobal, 50000, 1.5, 0, 0},
	{UpgradeGlobal2, "global2", "Meditation", UpgradeKindGlobal, 500000, 1.5, 0, 0},
	{UpgradeGlobal3, "global3", "Home Office", UpgradeKindGlobal, 5000000, 1.5, 0, 0},
	{UpgradeGlobal4, "global4", "Coworking Space", UpgradeKindGlobal, 50000000, 2, 0, 0},
	{UpgradeGlobal5, "global5", "Private Jet", UpgradeKindGlobal, 500000000, 2, 0, 0},
}

func UpgradeByID(id UpgradeID) UpgradeDef {
	return upgradeDefs[id]
}

func UpgradeByKey(key string) (UpgradeDef, bool) {
	for _, def := range upgradeDefs {
		if def.Key == key {
			return def, true
		}
	}
	return UpgradeDef{}, false
}

func AllUpgrades() []UpgradeDef {
	return upgradeDefs[:]
}
