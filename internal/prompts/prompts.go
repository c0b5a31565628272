package prompts

import (
	"fmt"
	"strings"
)

// ============================================================================
// Comment Classification
// ============================================================================

// ClassificationSystemPrompt guides the sentiment labeling of one batch of
// comments. The model must return exactly one label per input comment.
const ClassificationSystemPrompt = `You are a YouTube comment sentiment analyst. Classify each comment into exactly one of three sentiments:

- positive: supportive, appreciative, or constructive comments
- negative: critical, complaining, or hostile comments
- neutral: questions, factual statements, or comments with no clear sentiment

Return one classification per input comment, preserving input order. Use the comment text exactly as given in the "comment" field of each result.`

// ClassificationInput renders one batch of comments as a numbered list,
// with an optional transcript excerpt for context.
func ClassificationInput(comments []string, transcript string) string {
	var sb strings.Builder
	if transcript != "" {
		sb.WriteString("Video transcript excerpt (context only, do not classify):\n")
		sb.WriteString(transcript)
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("Classify the following %d comments:\n\n", len(comments)))
	for i, c := range comments {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, c))
	}
	return sb.String()
}

// ============================================================================
// Insight Stages
// ============================================================================

// EmotionsSystemPrompt extracts the dominant audience emotions.
const EmotionsSystemPrompt = `You are analyzing the emotional landscape of a YouTube comment section. Identify the top 4-6 emotions expressed by viewers.

For each emotion provide:
- name: a single emotion word (e.g. excitement, frustration, gratitude, confusion)
- percentage: estimated share of comments expressing it (0-100)
- triggers: 1-3 short phrases quoted or paraphrased from comments that triggered this emotion

Base the analysis only on the comments provided.`

// PatternsSystemPrompt extracts recurring themes per sentiment bucket.
const PatternsSystemPrompt = `You are identifying recurring discussion themes in a YouTube comment section. The comments are grouped by sentiment.

For each sentiment group (positive, negative, neutral) identify up to 3-5 recurring themes. For each theme provide:
- theme: a short theme label
- mentions: how many comments touch this theme
- keywords: 2-5 words or phrases that recur within the theme

Skip a group entirely if it has no comments or no recurring theme.`

// ThingsLovedSystemPrompt extracts what viewers appreciated.
const ThingsLovedSystemPrompt = `You are summarizing what viewers loved about a video, based on its positive comments.

Identify 3-5 aspects. For each provide:
- aspect: what viewers loved (short phrase)
- reason: why it resonated, in one sentence
- mentions: how many comments praise it
- examples: 1-3 short example quotes from the comments`

// ImprovementsSystemPrompt extracts actionable criticism.
const ImprovementsSystemPrompt = `You are extracting actionable improvement suggestions from critical YouTube comments. The input mixes negative comments and neutral comments that contain contrastive language ("but", "however", "could", "should").

Identify 3-5 issues. For each provide:
- issue: the problem viewers describe (short phrase)
- severity: one of minor, moderate, critical
- suggestion: a concrete change the creator could make
- mentions: how many comments raise it
- examples: 1-3 short example quotes`

// WantMoreSystemPrompt extracts demand signals for future content.
const WantMoreSystemPrompt = `You are identifying what viewers want more of, based on positive and neutral YouTube comments. Report three categories:

- contentRequests: explicit requests for new videos or topics
- sectionRequests: requests to expand or go deeper on a specific part of this video
- impliedQuestions: questions that imply a topic the video did not cover

For each entry provide the topic/section/question, a mention count, and 1-2 example quotes. Leave a category empty if the comments contain nothing for it.`

// InsightInput renders a bounded comment sample, with an optional
// transcript excerpt, for one insight stage.
func InsightInput(label string, comments []string, transcript string) string {
	var sb strings.Builder
	if transcript != "" {
		sb.WriteString("Video transcript excerpt:\n")
		sb.WriteString(transcript)
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("%s (%d comments):\n\n", label, len(comments)))
	for _, c := range comments {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ============================================================================
// Transcript Condensation
// ============================================================================

// TranscriptChunkPrompt summarizes one chunk of a long transcript.
const TranscriptChunkPrompt = `Summarize this portion of a video transcript in 3-5 sentences. Keep topic names, product names, and concrete claims; drop filler and repetition.`

// TranscriptMergePrompt merges chunk summaries into one condensed transcript.
const TranscriptMergePrompt = `The following are sequential summaries of portions of one video transcript. Merge them into a single coherent summary of at most 10 sentences, preserving the order topics were covered.`

// ============================================================================
// Validation Agents
// ============================================================================

// CompetitionAgentPrompt drives the competitive-research agent.
const CompetitionAgentPrompt = `You are a YouTube competition research agent. Your job: assess how crowded the space is for a proposed video idea.

Use the available tools to search for existing videos on the idea and pull their statistics. Look for: how many strong competitors exist, their view counts, and what angle the top videos take.

When you have enough data, stop calling tools and state your findings in plain text.`

// AudienceAgentPrompt drives the audience-research agent.
const AudienceAgentPrompt = `You are a YouTube audience research agent. Your job: understand the target audience for a proposed video idea.

Use the available tools to find comparable videos and examine their engagement (views, likes, comments). Infer: who watches this content, what they engage with, and how large the interested audience appears to be.

When you have enough data, stop calling tools and state your findings in plain text.`

// TrendAgentPrompt drives the trend-research agent.
const TrendAgentPrompt = `You are a YouTube trend research agent. Your job: judge whether a proposed video idea is rising, stable, or fading.

Use the available tools to compare recent uploads against older ones on the topic, looking at publish dates and view velocity.

When you have enough data, stop calling tools and state your findings in plain text.`

// StrategyAgentPrompt drives the strategy-research agent.
const StrategyAgentPrompt = `You are a YouTube content strategy agent. Your job: determine what would make a video on the proposed idea stand out.

Use the available tools to study the top-performing videos on the topic: their titles, their framing, and what the best ones have in common. Identify gaps the proposed video could fill.

When you have enough data, stop calling tools and state your findings in plain text.`

// AgentSynthesisPrompt converts an agent's accumulated research into its
// structured output.
const AgentSynthesisPrompt = `Convert your research findings below into the requested structured format. Be concrete: cite numbers where your tool results provided them, and do not invent data you did not observe.`

// AgentInput renders the idea under validation for an agent.
func AgentInput(idea, targetAudience, goal string) string {
	var sb strings.Builder
	sb.WriteString("Video idea: ")
	sb.WriteString(idea)
	sb.WriteByte('\n')
	if targetAudience != "" {
		sb.WriteString("Target audience: ")
		sb.WriteString(targetAudience)
		sb.WriteByte('\n')
	}
	if goal != "" {
		sb.WriteString("Creator goal: ")
		sb.WriteString(goal)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ============================================================================
// Supervisor
// ============================================================================

// SupervisorSystemPrompt synthesizes the four agent analyses into a verdict.
const SupervisorSystemPrompt = `You are the supervisor of a YouTube idea-validation team. Four research agents have analyzed a proposed video idea: competition, audience, trend, and strategy.

Synthesize their findings into a final verdict:
- verdict: one of "go", "refine", "avoid"
- score: 0-100 overall opportunity score
- improvements: ranked list of the most impactful changes to the idea
- titleSuggestions: 3-5 compelling title options
- contentAngles: 2-4 distinct angles the video could take
- referenceVideos: 1-5 existing videos worth studying, with why each matters
- reasoning: a short paragraph explaining the verdict

Ground every claim in the agents' findings. If the agents disagree, weigh competition and trend data over speculation.`

// SupervisorInput concatenates the four agent outputs for the final call.
func SupervisorInput(idea string, sections map[string]string) string {
	var sb strings.Builder
	sb.WriteString("Video idea under validation: ")
	sb.WriteString(idea)
	sb.WriteString("\n\n")
	for _, name := range []string{"competition", "audience", "trend", "strategy"} {
		if body, ok := sections[name]; ok {
			sb.WriteString(strings.ToUpper(name))
			sb.WriteString(" ANALYSIS:\n")
			sb.WriteString(body)
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
