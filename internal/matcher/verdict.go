package matcher

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
)

// Message keys of the verdict catalog
const (
	msgNoMatch  = "verdict.no_match"
	msgAgree    = "verdict.agree"
	msgDisagree = "verdict.disagree"
	msgNoGuess  = "verdict.no_guess"
)

var (
	// DefaultLanguage is the game's native language
	DefaultLanguage = language.MustParse("zh-Hant")

	supportedLanguages = []language.Tag{DefaultLanguage, language.English}
	languageMatcher    = language.NewMatcher(supportedLanguages)
	verdictCatalog     = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(DefaultLanguage))

	set := func(tag language.Tag, key, msg string) {
		if err := b.SetString(tag, key, msg); err != nil {
			panic(err)
		}
	}

	set(DefaultLanguage, msgNoMatch, "找不到匹配結果，請確保 photos/ 內有各成員的量足照片，且照片中有正面人臉。")
	set(DefaultLanguage, msgAgree, "AI 也認為是 %s，你答對了！")
	set(DefaultLanguage, msgDisagree, "AI 認為是 %s，你的答案是 %s。")
	set(DefaultLanguage, msgNoGuess, "AI 認為是 %s。")

	set(language.English, msgNoMatch, "No match found. Make sure photos/ has enough pictures of every member, each showing a frontal face.")
	set(language.English, msgAgree, "The AI also thinks it's %s. You got it right!")
	set(language.English, msgDisagree, "The AI thinks it's %s, your answer was %s.")
	set(language.English, msgNoGuess, "The AI thinks it's %s.")

	return b
}

// Verdicts phrases round outcomes in one language
type Verdicts struct {
	registry *domain.Registry
	printer  *message.Printer
	tag      language.Tag
}

// NewVerdicts picks the closest supported language to lang. Unknown or
// malformed tags fall back to DefaultLanguage.
func NewVerdicts(registry *domain.Registry, lang string) *Verdicts {
	tag := DefaultLanguage
	if parsed, err := language.Parse(lang); err == nil {
		_, index, confidence := languageMatcher.Match(parsed)
		if confidence != language.No {
			tag = supportedLanguages[index]
		}
	}
	return &Verdicts{
		registry: registry,
		printer:  message.NewPrinter(tag, message.Catalog(verdictCatalog)),
		tag:      tag,
	}
}

// Language is the resolved language tag
func (v *Verdicts) Language() language.Tag {
	return v.tag
}

// Verdict compares the predicted member with the player's guess. An empty
// predictedKey means no identity; an empty guess means the player did not
// guess. The guess is matched by display name and echoed as submitted.
func (v *Verdicts) Verdict(predictedKey, guess string) string {
	if predictedKey == "" {
		return v.printer.Sprintf(msgNoMatch)
	}

	predicted := v.registry.DisplayName(predictedKey)
	if predicted == "" {
		predicted = predictedKey
	}

	if guess == "" {
		return v.printer.Sprintf(msgNoGuess, predicted)
	}

	if key, ok := v.registry.KeyForDisplay(guess); ok && key == predictedKey {
		return v.printer.Sprintf(msgAgree, predicted)
	}
	return v.printer.Sprintf(msgDisagree, predicted, guess)
}

// Verdict phrases a round in DefaultLanguage
func Verdict(registry *domain.Registry, predictedKey, guess string) string {
	return NewVerdicts(registry, DefaultLanguage.String()).Verdict(predictedKey, guess)
}
