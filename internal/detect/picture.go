package detect

import (
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// cueWindow is how many tokens a polarity cue may precede the image word by.
const cueWindow = 3

// ProfilePicture requires an image word (or "profile"). Negative phrasing is
// checked before positive phrasing so "without a profile picture" is false.
func ProfilePicture(in Input, found query.Fields) Output {
	if found.HasProfilePic != nil {
		return Output{}
	}
	if !in.HasAny(imageWords) && !in.Has("profile") {
		return Output{}
	}

	if cueBeforeImage(in, negationCues) {
		return Output{Fields: query.Fields{HasProfilePic: query.Ptr(false)}}
	}
	if cueBeforeImage(in, positiveCues) || in.HasPhrase(
		"profile picture", "profile pictures", "profile photo", "profile photos",
		"profile image", "profile avatar",
	) {
		return Output{Fields: query.Fields{HasProfilePic: query.Ptr(true)}}
	}
	return Output{}
}

func cueBeforeImage(in Input, cues map[string]bool) bool {
	for i, t := range in.tokens {
		if !cues[t] {
			continue
		}
		for j := i + 1; j <= i+cueWindow && j < len(in.tokens); j++ {
			if w := in.tokens[j]; imageWords[w] || w == "profile" {
				return true
			}
		}
	}
	return false
}
