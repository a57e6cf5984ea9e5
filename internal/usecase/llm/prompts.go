package llm

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/usersearch/internal/domain/user"
)

// parseSystemPrompt enumerates the filter schema with worked examples.
const parseSystemPrompt = `Parse natural language to JSON. Output ONLY JSON, no text.

SORT ORDER RULES (CRITICAL):
- longest/newest = "desc"
- shortest/oldest/alphabetical = "asc"

GENDER: Male|Female|Other|null. ladies/women/gals=Female, guys/men/gentlemen=Male, non-binary=Other, fmale/femal=Female
NAME: Extract name/letter to name_substr. starts_with_mode=true if "start(s) with"/"begins with"
PROFILE: has_profile_pic=true if "with pic/photo", false if "without/w/o/no pic"
SORT: name_length for longest/shortest name, username_length for username, name for alphabetical, created_at for newest/oldest
PARITY: name_length_parity="odd"|"even" for odd/even letters

Examples:
"female users" -> {"gender":"Female","name_substr":null,"starts_with_mode":false,"name_length_parity":null,"has_profile_pic":null,"sort_by":null,"sort_order":"desc"}
"Adam" -> {"gender":null,"name_substr":"Adam","starts_with_mode":false,"name_length_parity":null,"has_profile_pic":null,"sort_by":null,"sort_order":"desc"}
"starting with J" -> {"gender":null,"name_substr":"J","starts_with_mode":true,"name_length_parity":null,"has_profile_pic":null,"sort_by":null,"sort_order":"desc"}
"longest username" -> {"gender":null,"name_substr":null,"starts_with_mode":false,"name_length_parity":null,"has_profile_pic":null,"sort_by":"username_length","sort_order":"desc"}
"shortest name" -> {"gender":null,"name_substr":null,"starts_with_mode":false,"name_length_parity":null,"has_profile_pic":null,"sort_by":"name_length","sort_order":"asc"}
"newest users" -> {"gender":null,"name_substr":null,"starts_with_mode":false,"name_length_parity":null,"has_profile_pic":null,"sort_by":"created_at","sort_order":"desc"}
"oldest users" -> {"gender":null,"name_substr":null,"starts_with_mode":false,"name_length_parity":null,"has_profile_pic":null,"sort_by":"created_at","sort_order":"asc"}
"alphabetical" -> {"gender":null,"name_substr":null,"starts_with_mode":false,"name_length_parity":null,"has_profile_pic":null,"sort_by":"name","sort_order":"asc"}
"w/ pics" -> {"gender":null,"name_substr":null,"starts_with_mode":false,"name_length_parity":null,"has_profile_pic":true,"sort_by":null,"sort_order":"desc"}
"w/o avatar" -> {"gender":null,"name_substr":null,"starts_with_mode":false,"name_length_parity":null,"has_profile_pic":false,"sort_by":null,"sort_order":"desc"}
"odd letters" -> {"gender":null,"name_substr":null,"starts_with_mode":false,"name_length_parity":"odd","has_profile_pic":null,"sort_by":null,"sort_order":"desc"}`

const parseUserPrompt = `Parse this query into JSON:

Query: %q

Output JSON with exactly seven keys:
- "gender": "Male" | "Female" | "Other" | null
- "name_substr": string | null
- "starts_with_mode": true | false
- "name_length_parity": "odd" | "even" | null
- "has_profile_pic": true | false | null
- "sort_by": "name_length" | "username_length" | "name" | "username" | "created_at" | null
- "sort_order": "asc" | "desc"

JSON:`

const rankSystemPrompt = "You are a relevance ranker. Output ONLY a JSON array of integers."

const rankUserPrompt = `Rank these users by relevance to: %q

Users:
%s

Consider:
- Name similarity to query
- Gender match if mentioned
- Username relevance

Output ONLY a JSON array of user IDs, most relevant first.
Example: [3, 1, 5, 2, 4]

Your response:`

const (
	warmupSystemPrompt = "Reply with just 'ok'"
	warmupUserPrompt   = "hi"
)

func parsePrompt(q string) string {
	return fmt.Sprintf(parseUserPrompt, q)
}

type rankCandidate struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Username string `json:"username"`
}

func rankPrompt(q string, users []user.Record) (string, error) {
	candidates := make([]rankCandidate, 0, len(users))
	for _, u := range users {
		candidates = append(candidates, rankCandidate{ID: u.ID, Name: u.FullName, Gender: u.Gender, Username: u.Username})
	}
	data, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal rank candidates: %w", err)
	}
	return fmt.Sprintf(rankUserPrompt, q, data), nil
}
