package auth

// referralWords is the pool for human-readable referral codes. Words are
// short, unambiguous, and safe to read aloud to a teenager's parent.
var referralWords = []string{
	"Apple", "Arrow", "Badge", "Beach", "Berry", "Blaze", "Bloom", "Brave",
	"Breeze", "Brick", "Candle", "Canyon", "Cedar", "Charm", "Cherry", "Cliff",
	"Cloud", "Clover", "Comet", "Coral", "Crane", "Creek", "Crown", "Dawn",
	"Delta", "Drift", "Eagle", "Ember", "Fable", "Falcon", "Fern", "Flame",
	"Flash", "Forest", "Frost", "Galaxy", "Garden", "Gem", "Glade", "Glow",
	"Grove", "Harbor", "Hawk", "Hazel", "Honey", "Ivory", "Jade", "Jolly",
	"Juniper", "Lagoon", "Lantern", "Lark", "Lemon", "Lily", "Lunar", "Maple",
	"Meadow", "Mellow", "Mint", "Misty", "Nectar", "Noble", "Nova", "Oasis",
	"Ocean", "Olive", "Onyx", "Opal", "Orbit", "Orchid", "Pebble", "Penny",
	"Pine", "Plum", "Polar", "Prism", "Quartz", "Quill", "Rain", "Raven",
	"Reef", "Ridge", "River", "Robin", "Rocket", "Rosy", "Ruby", "Sage",
	"Shine", "Sierra", "Silver", "Sky", "Solar", "Spark", "Spring", "Star",
	"Stone", "Storm", "Summit", "Sunny", "Swift", "Thunder", "Tiger", "Topaz",
	"Trail", "Tulip", "Velvet", "Violet", "Willow", "Zephyr",
}
