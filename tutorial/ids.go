package tutorial

import "github.com/goliatone/go-stagehand/world"

// NPC ids.
const (
	npcGielinorGuide    = 3308
	npcSurvivalExpert   = 8503
	npcMasterChef       = 3305
	npcQuestGuide       = 3312
	npcMiningInstructor = 3311
	npcCombatInstructor = 3307
	npcGiantRat         = 3313
	npcAccountGuide     = 3310
	npcBrotherBrace     = 3319
	npcMagicInstructor  = 3309
	npcChicken          = 3316
	npcAdventurerJon    = 9244
	npcFishingSpot      = 3317
)

// Object ids.
const (
	objTree       = 9730
	objStartDoor  = 9398
	objRange      = 9736
	objQuestDoor  = 9721
	objLadder     = 9726
	objTinRock    = 10080
	objCopperRock = 10079
	objFurnace    = 10082
	objAnvil      = 2097
	objRatGate    = 9720
	objBankBooth  = 10083
	objPollBooth  = 26815
)

// Item ids.
const (
	itemPickaxe    = 1265
	itemHammer     = 2347
	itemTinOre     = 438
	itemCopperOre  = 436
	itemBronzeBar  = 2349
	itemDagger     = 1205
	itemSword      = 1277
	itemShield     = 1171
	itemShortbow   = 841
	itemArrows     = 882
	itemAirRune    = 556
	itemMindRune   = 558
	animFiremaking = 733
)

const spellWindStrike = "wind_strike"

// Tiles.
var (
	tileChef          = world.Tile(3075, 3085)
	tileQuestGuide    = world.Tile(3088, 3124)
	tileMining        = world.Tile(3081, 9506)
	tileCombat        = world.Tile(3105, 9507)
	tileRatPen        = world.Tile(3104, 9518)
	tileBankBooth     = world.Tile(3122, 3123)
	tilePollBooth     = world.Tile(3120, 3121)
	tileAccountGuide  = world.Tile(3125, 3124)
	tileChapel        = world.Tile(3123, 3106)
	tileMagic         = world.Tile(3142, 3085)
	tileLumbridge     = world.Tile(3222, 3218)
	miningCaveMinimum = 9000
)

// Widgets.
var (
	wTutorialText      = world.WidgetIndex(263, 1, 0)
	wSettingsTab       = world.Widget(164, 41)
	wInventoryTab      = world.Widget(164, 55)
	wSkillsTab         = world.Widget(164, 53)
	wQuestTab          = world.Widget(164, 54)
	wQuestPanel        = world.Widget(399, 7)
	wMusicPanel        = world.Widget(261, 1)
	wSmithDagger       = world.WidgetIndex(312, 9, 2)
	wEquipmentTab      = world.Widget(164, 63)
	wEquipmentStats    = world.Widget(387, 1)
	wCombatTab         = world.Widget(164, 52)
	wAccountTab        = world.Widget(164, 39)
	wBankPanel         = world.Widget(12, 0)
	wBankClose         = world.Widget(12, 11)
	wPollPanel         = world.Widget(310, 2)
	wPollClose         = world.Widget(310, 7)
	wPrayerTab         = world.Widget(164, 57)
	wFriendsTab        = world.Widget(164, 40)
	wDialogOptionThree = world.WidgetIndex(219, 1, 3)
	wSpellbookTab      = world.Widget(164, 58)
)

// Items by name, where the game renames stacks.
var (
	itRawShrimp    = world.ItemNames("Raw shrimps", "Raw shrimp")
	itCookedShrimp = world.ItemNames("Shrimps", "Shrimp")
	itLogs         = world.ItemNames("Logs")
	itAxe          = world.ItemNames("Bronze axe")
	itTinderbox    = world.ItemNames("Tinderbox")
	itFlour        = world.ItemNames("Pot of flour")
	itWater        = world.ItemNames("Bucket of water")
	itDough        = world.ItemNames("Bread dough")
	itBread        = world.ItemNames("Bread")
)

var qFire = world.ObjectNamed("Fire")
