package classify

// Static lexicons used by the classifier. Matching is case-insensitive
// substring containment over the lowercased input; terms are stored
// lowercased.

// forbiddenTerms reject a message outright.
var forbiddenTerms = []string{
	"зверь",
	"666",
	"бгг",
	"lucifer",
	"пентаграмма",
	"оккультизм",
	"темные силы",
	"сатана",
}

// occultMarks are symbols and keywords checked in addition to the
// forbidden-term lexicon.
var occultMarks = []string{
	"🜁", "🜂", "🜃", "🜄",
	"pentagram",
	"lucifer",
	"бгг",
	"trigram",
	"sigil",
	"occult",
	"dark",
	"shadow",
}

// pureTerms is the allow-list: at least one must be present for a message
// to count as pure.
var pureTerms = []string{
	"христос",
	"господь",
	"бог",
	"свет",
	"агнец",
	"еммануил",
}

// topicTerms drive topical relevance and content-value scoring.
var topicTerms = []string{
	"христос",
	"бог",
	"свет",
	"агнец",
	"еммануил",
	"духовность",
	"молитва",
	"писание",
	"истина",
}

// taskPhrases mark a user message as a task command (bilingual).
var taskPhrases = []string{
	"создай задачу",
	"новая задача",
	"задание",
	"поручение",
	"create task",
	"new task",
	"assignment",
	"поручи",
	"создай",
}
