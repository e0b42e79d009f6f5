// Package prompt assembles the system and user blocks for the final
// generation call. Composition is pure string work: identical inputs
// yield byte-identical prompts, which is what makes this stage testable.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tanachan3/looqn-all/internal/model"
)

var jaLanguage = regexp.MustCompile(`(?i)^(ja|日本語)`)

// Input is everything the composer needs. Now is injected by the
// caller; the composer never reads the clock itself.
type Input struct {
	Position     model.Coordinate
	Language     string
	RadiusMeters int
	Count        int
	PlaceHint    string
	DisplayNouns []string
	Personas     []model.PersonaDetail
	StylePlan    []model.StyleTag
	Now          time.Time
}

// MinProperNounUse returns how many messages must include a whitelist
// noun: min(2, count) when the whitelist is non-empty, else 0.
func MinProperNounUse(displayNouns []string, count int) int {
	if len(displayNouns) == 0 {
		return 0
	}
	if count < 2 {
		return count
	}
	return 2
}

const styleDefinitionsJa = `- polite: 丁寧体中心（〜ます／〜ませんか／〜でしょう）。絵文字なし。
- casual: ため口・素直な感想（〜だ／〜する／〜かな？／〜かも）。
- playful: 軽い驚きや短い感嘆。絵文字はこのスタイルのみ可（セット全体で最大1個）。
- reflective: 観察→内省。比喩は少量。
- brisk: テンポ速め。短文・体言止め・呼びかけ。`

const styleDefinitionsEn = `- polite: courteous, indirect, no emoji.
- casual: friendly and direct, light contractions.
- playful: short exclamations/interjections; allow at most one emoji in the whole set.
- reflective: observation -> mild introspection; a bit of metaphor is OK.
- brisk: snappy rhythm; short clauses and suggestions.`

const variationRulesJa = `- セット全体で文末を少なくとも3種類（「〜ですね／〜だ／〜かな？／〜よ／〜かも」など）に分散。
- 同一語尾の完全一致を繰り返さない。
- 句読点（。！？や?）と一人称（私／僕／一人称なし）を分散。
- 絵文字は 'playful' のメッセージでのみ最大1個。`

const variationRulesEn = `- Use at least three different endings across the set (".", "!", "?", tag questions like "right?", "isn't it?").
- Don't repeat an identical sentence ending across messages.
- Vary punctuation and first-person usage (I / no pronoun) across messages.
- Emoji only in the 'playful' style (max 1 total).`

const firstPersonRulesJa = `- 一人称（任意・性別を明示しない）：male→「僕」も可、female→「私」、nonbinary/unspecified→「私」または一人称なし。使いすぎない。`

const firstPersonRulesEn = `- First-person pronoun "I" is allowed when natural. Do not mention gender explicitly.`

// ComposeSystem builds the system block: output contract, content
// constraints, proper-noun policy, length policy, and the per-index
// persona/style steering rules.
func ComposeSystem(in Input) string {
	isJa := jaLanguage.MatchString(in.Language)

	styleDefs := styleDefinitionsEn
	variation := variationRulesEn
	firstPerson := firstPersonRulesEn
	if isJa {
		styleDefs = styleDefinitionsJa
		variation = variationRulesJa
		firstPerson = firstPersonRulesJa
	}

	minProperUse := MinProperNounUse(in.DisplayNouns, in.Count)

	var personaLines []string
	for i, p := range in.Personas {
		personaLines = append(personaLines,
			fmt.Sprintf("%d. %s | age=%s | gender=%s | edu=%s", i+1, p.Label, p.Age, p.Gender, p.Education))
	}
	var styleLines []string
	for i, s := range in.StylePlan {
		styleLines = append(styleLines, fmt.Sprintf("%d. %s", i+1, s))
	}

	return fmt.Sprintf(`You are a copywriter for a hyperlocal social app. Write brief, grounded lines that feel like someone standing there.

Output:
- JSON only: {"messages":[...]} — no extra text or code fences.
- Language: exactly "%s" (no mixing, no translation notes).

Content constraints:
- Anonymous: no PII, no exact addresses, no private/small business names.
- Prefer public/generic terms when needed (station area, park entrance, riverbank).
- Include a light location/sensory cue (breeze, shade, traffic noise, footsteps, evening light).
- Infer local **time of day** and **season** from coordinates+UTC; don't mention time zone or UTC. Numeric HH:mm not required. Mention both once per message.
- Proper nouns: if a whitelist is provided, use **at most one** per message, **only** from the whitelist; include a noun in at least %d messages. All places must be within %dm.
- Length: about **two sentences per message**, total length **<= 300 bytes (UTF-8)**.
- No self-reference and no hashtags.

Persona & style (MANDATORY):
- Style each message by its index persona (do NOT print persona name/age/gender/education).
- Use the **style plan** for sentence endings, interjections, emoji usage, and rhythm.
- %s
- Education influences vocabulary & cadence (subtle; no explicit mention):
  - secondary: everyday words, short sentences, energetic or direct.
  - vocational: practical verbs, action-oriented suggestions, concrete phrasing.
  - undergraduate: casual & curious; light connectors ok.
  - graduate: slightly formal, precise wording, mild hedging (e.g., "perhaps / かも").
  - self-taught: exploratory tone, "learning/trying" vibe without stating it.
- Avoid stereotypes; be respectful and neutral.

Style definitions (for %s):
%s

Variation requirements:
%s

Personas by message index (1..N) — internal guide only:
%s

Style plan by message index (1..N):
%s`,
		in.Language,
		minProperUse,
		in.RadiusMeters,
		firstPerson,
		in.Language,
		styleDefs,
		variation,
		strings.Join(personaLines, "\n"),
		strings.Join(styleLines, "\n"))
}

// ComposeUser builds the user block: the literal coordinates and time
// context, the display whitelist, and the task statement.
func ComposeUser(in Input) string {
	hint := in.PlaceHint
	if hint == "" {
		hint = "none"
	}

	whitelist := "- (none)"
	if len(in.DisplayNouns) > 0 {
		var lines []string
		for _, n := range in.DisplayNouns {
			lines = append(lines, "- "+n)
		}
		whitelist = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`Analyze this place using only coordinates and current UTC.
Latitude: %g
Longitude: %g
Hemisphere: %s
Current UTC time: %s
Language: %s
Optional place hint (may be ignored): %s

Display whitelist of allowed public proper nouns (0 or 1 per message; within %dm):
%s

Task: Produce exactly %d messages styled by the persona of each index, tied to that area as observations or gentle questions.
Return only: {"messages":["...", "..."]}.`,
		in.Position.Latitude,
		in.Position.Longitude,
		in.Position.Hemisphere(),
		in.Now.UTC().Format(time.RFC3339),
		in.Language,
		hint,
		in.RadiusMeters,
		whitelist,
		in.Count)
}
