package detect

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func union(sets ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, s := range sets {
		for w := range s {
			out[w] = true
		}
	}
	return out
}

var (
	otherWords   = setOf("non-binary", "nonbinary", "enby", "genderqueer", "other-gender")
	femaleWords  = setOf("female", "woman", "women", "lady", "ladies", "girl", "girls")
	femaleTypos  = setOf("fmale", "femal", "femail", "femails", "femle", "feamle", "femmale", "femlae")
	maleWords    = setOf("male", "man", "men", "guy", "guys", "boy", "boys")
	nameMarkers  = setOf("named", "called", "name", "nicknamed")
	imageWords   = setOf("picture", "pictures", "photo", "photos", "image", "images", "avatar", "avatars")
	negationCues = setOf(
		"without", "no", "missing", "lacking", "lack", "lacks", "not",
		"don't", "dont", "doesn't", "doesnt", "haven't", "hasn't", "havent", "hasnt",
	)
	positiveCues = setOf("with", "has", "have", "having", "got", "own")

	usernameWords = setOf("username", "usernames", "handle", "handles")
	nameWords     = setOf("name", "names")
	longWords     = setOf("long", "big", "most")
	shortWords    = setOf("short", "small", "fewest", "least")
	newestWords   = setOf("newest", "signups", "recently", "newly")
	oldestWords   = setOf("oldest", "earliest")
	ascCues       = setOf("ascending", "asc", "increasing")
	descCues      = setOf("descending", "desc", "decreasing")
	lengthWords   = setOf("letter", "letters", "character", "characters", "chars", "length", "name", "names")

	// complexWords mark intents no rule covers; such text must reach the model.
	complexWords = setOf(
		"whose", "rhyme", "rhymes", "rhyming", "longer", "shorter", "exactly", "more", "less",
		"than", "two", "three", "four", "five", "contains", "ends", "ending", "birthdate",
		"birthday", "age", "old", "young", "registered", "password", "email", "between",
		"vowel", "vowels", "consonant", "consonants", "double", "same", "similar", "sounds",
		"except", "exclude", "excluding", "but",
	)

	stopWords = setOf(
		"show", "all", "users", "user", "with", "without", "in", "their", "his", "her", "its",
		"and", "or", "who", "whom", "that", "which", "is", "are", "was", "be", "have", "has",
		"having", "got", "a", "of", "by", "to", "for", "from", "on", "at", "me", "it", "them",
		"sorted", "sort", "order", "ordered", "letter", "letters", "character", "characters",
		"chars", "length", "odd", "even", "number", "count", "starts", "starting", "start",
		"begins", "begin", "beginning", "first", "last", "initial", "containing", "contain",
		"include", "includes", "including", "like", "profile", "no", "not", "missing",
		"gender", "genders", "other", "nb", "everyone", "everybody", "anyone", "any", "every",
		"some", "only", "just", "list", "find", "get", "see", "view", "search", "display",
		"username", "usernames", "handle", "handles", "created", "creation", "date", "time",
		"signup", "signups", "joined", "reverse", "alphabetical", "alphabetically", "a-z",
		"z-a", "z", "ascending", "descending", "asc", "desc", "newest", "oldest", "earliest",
		"longest", "shortest", "long", "short", "big", "small", "most", "least", "fewest",
		"end", "ends", "ending", "lacking", "lack", "do", "does", "did", "don't", "doesn't",
		"own", "new", "newly", "recently", "named", "called", "name", "names", "nicknamed",
		"there", "any", "those", "these", "this", "what", "where", "how", "many",
	)

	// vocabulary is every word a detector reacts to; none of them can be a name.
	vocabulary = union(
		otherWords, femaleWords, femaleTypos, maleWords, imageWords, negationCues,
		positiveCues, usernameWords, longWords, shortWords, newestWords, oldestWords,
		complexWords, stopWords,
	)
)
