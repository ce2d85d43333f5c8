package language

// English is the bootstrap language profile, registered by this
// package's init so Get("en") (or Get("")) always succeeds. Values are
// ported verbatim from original_source/audiobooker/language/en.py.
var English = New(
	"en", "English",
	[]QuotePair{{Open: `"`, Close: `"`}},
	[]QuotePair{{Open: "“", Close: "”"}},
	[]QuotePair{{Open: "‘", Close: "’"}, {Open: "'", Close: "'"}},
	[]string{
		"said", "asked", "replied", "answered", "whispered", "shouted",
		"muttered", "exclaimed", "cried", "called", "yelled", "screamed",
		"murmured", "demanded", "pleaded", "begged", "suggested", "agreed",
		"added", "continued", "explained", "insisted", "admitted",
		"confessed", "announced", "declared", "stated", "mentioned",
		"noted", "observed", "remarked", "commented", "groaned", "sighed",
		"laughed", "chuckled", "giggled", "sobbed",
	},
	map[string]string{
		"whispered": "whisper",
		"shouted":   "angry",
		"yelled":    "angry",
		"screamed":  "fearful",
		"muttered":  "grumpy",
		"exclaimed": "excited",
		"cried":     "sad",
		"sobbed":    "sad",
		"laughed":   "happy",
		"chuckled":  "happy",
		"giggled":   "happy",
		"sighed":    "sad",
		"groaned":   "grumpy",
		"demanded":  "angry",
		"pleaded":   "sad",
		"begged":    "sad",
	},
	[]string{
		"he", "she", "it", "they", "we", "i", "you",
		"him", "her", "them", "us", "me",
		"his", "hers", "its", "theirs", "ours", "mine", "yours",
		"softly", "loudly", "quietly", "gruffly", "sharply", "gently",
		"slowly", "quickly", "rapidly", "carefully", "angrily", "sadly",
		"happily", "nervously", "anxiously", "fearfully", "excitedly",
		"calmly", "coldly", "warmly", "coolly", "hotly", "flatly",
		"dryly", "wryly", "sweetly", "bitterly", "harshly", "roughly",
		"smoothly", "evenly", "unevenly", "breathlessly", "hoarsely",
		"huskily", "shrilly", "deeply", "lightly", "heavily", "urgently",
		"desperately", "frantically", "hysterically", "sarcastically",
		"mockingly", "teasingly", "playfully", "seriously", "solemnly",
		"thoughtfully", "absently", "distractedly", "sleepily", "wearily",
		"tiredly", "briskly", "curtly", "abruptly", "suddenly",
		"finally", "immediately", "eventually", "meanwhile", "instead",
		"however", "therefore", "moreover", "furthermore", "nevertheless",
		"wonderfully", "terribly", "horribly", "awfully", "incredibly",
	},
	`^[A-Z][a-z]{1,14}$`,
	[]string{
		`^(?:Chapter|CHAPTER)\s+(\d+|[IVXLCDM]+|[A-Za-z]+)(?:\s*[:\-.]\s*(.*))?$`,
		`^(?:Part|PART)\s+(\d+|[IVXLCDM]+)(?:\s*[:\-.]\s*(.*))?$`,
		`^(\d+)\s*[.:\-]\s+(.+)$`,
		`^#\s+(.+)$`,
		`^##\s+(.+)$`,
	},
	[]string{
		`^\*\s*\*\s*\*\s*$`,
		`^-\s*-\s*-\s*$`,
		`^~\s*~\s*~\s*$`,
		`^###\s*$`,
	},
)

func init() {
	Register(English)
}
