package board

// defaultGoals is the stock goal set used when a room is created
// without a custom board, row-major.
var defaultGoals = [Width * Height]string{
	"Collect 10 wood",
	"Craft a stone pickaxe",
	"Find a cave",
	"Tame an animal",
	"Reach level 5",

	"Cook a meal",
	"Build a bridge",
	"Defeat a skeleton",
	"Collect 5 iron",
	"Plant a garden",

	"Find a waterfall",
	"Craft a bed",
	"Explore a ruin",
	"Catch a fish",
	"Light 10 torches",

	"Trade with a villager",
	"Climb a mountain",
	"Defeat a spider",
	"Collect 3 gems",
	"Build a tower",

	"Find a secret room",
	"Craft a shield",
	"Ride a boat",
	"Harvest 20 crops",
	"Reach the far shore",
}
