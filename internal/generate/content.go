package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyCompletion reports a 2xx upstream response that carried no text.
var ErrEmptyCompletion = errors.New("empty completion")

const draftSystemInstruction = "You are an expert content creator for Farcaster, a decentralized social network. " +
	"Create engaging, authentic content that follows Farcaster's culture and best practices. " +
	"IMPORTANT: Keep content SHORT and CONCISE - maximum 1 paragraph only. " +
	"Always include relevant emojis and structure content for social media engagement."

// ContentRequest describes a draft to author: what it is about, what kind of
// post it is, and how it should sound. All three fields are required.
type ContentRequest struct {
	Topic       string
	ContentType string
	Tone        string
}

type InstructedGenerator interface {
	GenerateWithInstruction(ctx context.Context, model, instruction, prompt string, temperature float64) (string, error)
}

// ContentService authors draft content from a topic/type/tone triple. Unlike
// the generate pipeline it returns the model output unshaped; the draft
// editor is free to rework it before casting.
type ContentService struct {
	client  InstructedGenerator
	model   string
	timeout time.Duration
}

func NewContentService(client InstructedGenerator, model string, timeout time.Duration) *ContentService {
	return &ContentService{
		client:  client,
		model:   strings.TrimSpace(model),
		timeout: timeout,
	}
}

func (s *ContentService) GenerateDraftContent(ctx context.Context, req ContentRequest) (string, error) {
	prompt := buildDraftPrompt(req.Topic, req.ContentType, req.Tone)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.GenerateWithInstruction(ctx, s.model, draftSystemInstruction, prompt, defaultTemperature)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func buildDraftPrompt(topic, contentType, tone string) string {
	base := fmt.Sprintf("Create a %s about %q in a %s tone for Farcaster.",
		strings.ToLower(contentType), topic, strings.ToLower(tone))

	return base + "\n\nRequirements:\n" + contentTypeInstructions(contentType) +
		"\n\nTone guidance:\n" + toneGuidance(tone) +
		"\n\nFormat:\n" +
		"- Write for Farcaster's audience (crypto-native, tech-savvy, engaged)\n" +
		"- MAXIMUM 1 PARAGRAPH - keep it short and to the point\n" +
		"- Aim for 100-200 characters total (very concise)\n" +
		"- Include 1-2 relevant emojis maximum\n" +
		"- Make it engaging and likely to generate replies/recasts\n" +
		"- NO long explanations or multiple points\n\n" +
		"Generate SHORT, FOCUSED content ready to be posted to Farcaster."
}

func contentTypeInstructions(contentType string) string {
	switch strings.ToLower(contentType) {
	case "educational":
		return "- Share one key insight or takeaway in a single paragraph\n" +
			"- Use clear, digestible information\n" +
			"- Add 1-2 relevant emojis to enhance readability\n" +
			"- End with a brief thought-provoking question\n" +
			"- Keep it concise and focused on one main point"
	case "news":
		return "- Start with the key news point in one sentence\n" +
			"- Briefly explain why it matters\n" +
			"- Keep it timely and relevant\n" +
			"- Use 1-2 emojis to highlight importance"
	case "personal":
		return "- Share a brief personal perspective\n" +
			"- Be authentic and relatable\n" +
			"- Include one key lesson learned\n" +
			"- Connect with the audience on a personal level"
	case "analysis":
		return "- Focus on one key industry insight\n" +
			"- Provide the most important data point\n" +
			"- Mention the main implication\n" +
			"- End with a brief future outlook"
	case "creative":
		return "- Tell a brief, engaging story\n" +
			"- Use one creative element\n" +
			"- Create emotional connection\n" +
			"- Have a satisfying conclusion"
	default:
		return "- Create engaging, shareable content in one paragraph\n" +
			"- Use 1-2 appropriate emojis\n" +
			"- Keep it concise but informative\n" +
			"- Include a call to action or question"
	}
}

func toneGuidance(tone string) string {
	switch strings.ToLower(tone) {
	case "professional":
		return "- Use authoritative but approachable language\n" +
			"- Include industry terminology appropriately\n" +
			"- Maintain credibility while being accessible\n" +
			"- Focus on value and insights"
	case "casual":
		return "- Use conversational, friendly language\n" +
			"- Include casual expressions and slang when appropriate\n" +
			"- Be relatable and down-to-earth\n" +
			"- Feel like talking to a knowledgeable friend"
	case "humorous":
		return "- Include appropriate humor and wit\n" +
			"- Use clever observations or funny analogies\n" +
			"- Keep it light but still informative\n" +
			"- Make people smile while learning"
	default:
		return "- Use clear, engaging language\n" +
			"- Be authentic and genuine\n" +
			"- Focus on providing value to readers"
	}
}
