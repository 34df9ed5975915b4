// Package game holds game data used by the bots: item and animation ids,
// object-marker colors and text colors.
package game

import "scape-bot/internal/vision"

// Item ids.
const (
	RawShrimps = 317
	Shrimps    = 315
	RawTrout   = 335
	Trout      = 333
	RawSalmon  = 331
	Salmon     = 329
	Lobster    = 379
	Swordfish  = 373
	Monkfish   = 7946
	Shark      = 385
	Tuna       = 361
	Cake       = 1891

	BurntFish      = 343
	BurntShrimp    = 7954
	BurntSwordfish = 375
	BurntLobster   = 381

	Feather = 314

	Absorption1 = 11737
	Absorption2 = 11736
	Absorption3 = 11735
	Absorption4 = 11734
)

// Item groups.
var (
	RawFish    = []int{RawSalmon, RawTrout}
	BurnedFish = []int{BurntFish, BurntShrimp, BurntSwordfish, BurntLobster}
	CookedFish = append([]int{Salmon, Trout}, BurnedFish...)
	AllFood    = []int{Shrimps, Trout, Salmon, Lobster, Swordfish, Monkfish, Shark, Tuna, Cake}
)

// Animation ids.
const (
	CookingFire  = 897
	CookingRange = 896

	FishingNet       = 621
	FishingBigNet    = 620
	FishingHarpoon   = 618
	FishingCage      = 619
	FishingRod       = 622
	FishingFlyRod    = 623
	FishingBarbarian = 9350
)

// Animation groups.
var (
	CookingAnimations = []int{CookingFire, CookingRange}
	FishingAnimations = []int{FishingNet, FishingBigNet, FishingHarpoon, FishingCage, FishingRod, FishingFlyRod, FishingBarbarian}
)

// Object-marker colors as drawn by the client's marker plugins.
var (
	PurpleMark = vision.Mark{
		Name:   "purple",
		RGB:    vision.RGB(170, 0, 255),
		HSVLow: [3]float64{130, 200, 200},
		HSVHi:  [3]float64{145, 255, 255},
	}
	CyanMark = vision.Mark{
		Name:   "cyan",
		RGB:    vision.RGB(0, 255, 255),
		HSVLow: [3]float64{85, 200, 200},
		HSVHi:  [3]float64{95, 255, 255},
	}
	GreenMark = vision.Mark{
		Name:   "green",
		RGB:    vision.RGB(0, 255, 0),
		HSVLow: [3]float64{55, 200, 200},
		HSVHi:  [3]float64{65, 255, 255},
	}
	RedMark = vision.Mark{
		Name:   "red",
		RGB:    vision.RGB(255, 0, 0),
		HSVLow: [3]float64{0, 200, 200},
		HSVHi:  [3]float64{5, 255, 255},
	}
	// PinkMark is the ground-item highlight color.
	PinkMark = vision.Mark{
		Name:   "pink",
		RGB:    vision.RGB(255, 0, 231),
		HSVLow: [3]float64{150, 200, 200},
		HSVHi:  [3]float64{160, 255, 255},
	}
)

// Marks by name, for configuration and inspection.
var Marks = map[string]vision.Mark{
	PurpleMark.Name: PurpleMark,
	CyanMark.Name:   CyanMark,
	GreenMark.Name:  GreenMark,
	RedMark.Name:    RedMark,
	PinkMark.Name:   PinkMark,
}

// Text colors.
var (
	OffWhiteText  = vision.RGB(255, 255, 255)
	OffCyanText   = vision.RGB(0, 255, 255)
	OffGreenText  = vision.RGB(0, 255, 0)
	OffOrangeText = vision.RGB(255, 144, 64)
	YellowText    = vision.RGB(255, 255, 0)
	RedText       = vision.RGB(255, 0, 0)
)
