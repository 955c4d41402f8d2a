package tagging

// Fixed vocabularies used to build and partition tag sets.
var (
	Races   = []string{"Human", "Asura", "Norn", "Charr", "Sylvari"}
	Genders = []string{"Male", "Female"}
	Classes = []string{
		"Guardian", "Warrior", "Engineer", "Ranger", "Thief",
		"Elementalist", "Mesmer", "Necromancer", "Revenant",
	}
	ColorCategories = []string{
		"Gray dyes", "Brown dyes", "Red dyes", "Orange dyes",
		"Yellow dyes", "Green dyes", "Blue dyes", "Purple dyes",
	}
	Sources = []string{
		"Lunar New Year", "Super Adventure Box", "Dragon Bash", "Four Winds",
		"Halloween", "Loot", "Gems Store", "Trading Post",
	}
)

type keywordRule struct {
	Keyword string
	Tag     string
}

// dyeColorRules is matched case-insensitively against dye names, in order.
var dyeColorRules = []keywordRule{
	{"Gray", "Gray dyes"},
	{"Brown", "Brown dyes"},
	{"Red", "Red dyes"},
	{"Orange", "Orange dyes"},
	{"Yellow", "Yellow dyes"},
	{"Green", "Green dyes"},
	{"Blue", "Blue dyes"},
	{"Purple", "Purple dyes"},
	{"Violet", "Purple dyes"},
	{"Pink", "Red dyes"},
	{"Beige", "Brown dyes"},
	{"Tan", "Brown dyes"},
	{"White", "Gray dyes"},
	{"Black", "Gray dyes"},
	{"Silver", "Gray dyes"},
	{"Gold", "Yellow dyes"},
	{"Teal", "Blue dyes"},
	{"Cyan", "Blue dyes"},
	{"Lime", "Green dyes"},
	{"Olive", "Green dyes"},
	{"Maroon", "Red dyes"},
	{"Navy", "Blue dyes"},
}

// flagSources maps skin flags to a source tag. An empty tag means the flag
// is known but only resolvable through the festival name rules.
var flagSources = map[string]string{
	"Gemstore":    "Gems Store",
	"Achievement": "Loot",
	"Crafting":    "Loot",
	"Drop":        "Loot",
	"Vendor":      "Trading Post",
	"Festival":    "",
}

// festivalRules is matched case-sensitively against skin names, in order.
var festivalRules = []keywordRule{
	{"Lunar", "Lunar New Year"},
	{"SAB", "Super Adventure Box"},
	{"Dragon Bash", "Dragon Bash"},
	{"Zephyr", "Four Winds"},
	{"Halloween", "Halloween"},
	{"Wintersday", "Loot"},
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
