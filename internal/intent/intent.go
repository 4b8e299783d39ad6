// Package intent classifies travel questions into canned intents and picks a
// reply for the chat backend.
package intent

import (
	_ "embed"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultThreshold is the minimum score an intent needs to be considered.
const DefaultThreshold = 0.25

// UnknownTag is reported when no intent clears the threshold.
const UnknownTag = "unknown"

// UnknownReply answers messages that match no intent.
const UnknownReply = "I'm not sure I understood. Could you rephrase your travel question?"

//go:embed intents.yaml
var defaultIntents []byte

// Intent is one class of user question.
type Intent struct {
	Tag       string   `yaml:"tag"`
	Patterns  []string `yaml:"patterns"`
	Responses []string `yaml:"responses"`
}

type intentFile struct {
	Intents []Intent `yaml:"intents"`
}

// Prediction is a scored intent.
type Prediction struct {
	Tag         string
	Probability float64
	// Matched is the number of pattern keywords found in the sentence.
	Matched int
}

// Answer is the reply chosen for a sentence.
type Answer struct {
	Tag         string
	Probability float64
	Text        string
}

type compiledIntent struct {
	Intent
	patterns [][]string
}

// Classifier scores sentences against a fixed set of intents.
type Classifier struct {
	intents   []compiledIntent
	threshold float64

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(t float64) Option {
	return func(c *Classifier) {
		c.threshold = t
	}
}

// WithSeed makes response selection deterministic. A zero seed keeps the
// time-based source.
func WithSeed(seed int64) Option {
	return func(c *Classifier) {
		if seed != 0 {
			c.rng = rand.New(rand.NewSource(seed))
		}
	}
}

// Parse decodes an intents document.
func Parse(r io.Reader) ([]Intent, error) {
	var f intentFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode intents: %w", err)
	}
	if err := validate(f.Intents); err != nil {
		return nil, err
	}
	return f.Intents, nil
}

// LoadFile reads intents from a YAML file.
func LoadFile(path string) ([]Intent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open intents file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Default returns the built-in travel intents.
func Default() []Intent {
	intents, err := Parse(strings.NewReader(string(defaultIntents)))
	if err != nil {
		panic(fmt.Sprintf("embedded intents are invalid: %v", err))
	}
	return intents
}

func validate(intents []Intent) error {
	if len(intents) == 0 {
		return fmt.Errorf("no intents defined")
	}
	seen := make(map[string]struct{}, len(intents))
	for i, in := range intents {
		if strings.TrimSpace(in.Tag) == "" {
			return fmt.Errorf("intent %d: missing tag", i)
		}
		if _, dup := seen[in.Tag]; dup {
			return fmt.Errorf("intent %q: duplicate tag", in.Tag)
		}
		seen[in.Tag] = struct{}{}
		if len(in.Patterns) == 0 {
			return fmt.Errorf("intent %q: no patterns", in.Tag)
		}
		if len(in.Responses) == 0 {
			return fmt.Errorf("intent %q: no responses", in.Tag)
		}
	}
	return nil
}

// NewClassifier compiles intents into a Classifier.
func NewClassifier(intents []Intent, opts ...Option) (*Classifier, error) {
	if err := validate(intents); err != nil {
		return nil, err
	}

	c := &Classifier{
		threshold: DefaultThreshold,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, in := range intents {
		ci := compiledIntent{Intent: in}
		for _, p := range in.Patterns {
			if kw := keywords(p); len(kw) > 0 {
				ci.patterns = append(ci.patterns, kw)
			}
		}
		c.intents = append(c.intents, ci)
	}
	return c, nil
}

// Threshold returns the minimum score for a prediction.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Tags lists the intent tags in definition order.
func (c *Classifier) Tags() []string {
	tags := make([]string, len(c.intents))
	for i, in := range c.intents {
		tags[i] = in.Tag
	}
	return tags
}

// Classify returns every intent scoring above the threshold, best first.
// An intent scores the best fraction of any one pattern's keywords present in
// the sentence.
func (c *Classifier) Classify(sentence string) []Prediction {
	words := make(map[string]struct{})
	for _, t := range Tokenize(sentence) {
		words[t] = struct{}{}
	}
	if len(words) == 0 {
		return nil
	}

	var out []Prediction
	for _, in := range c.intents {
		best := Prediction{Tag: in.Tag}
		for _, kw := range in.patterns {
			matched := 0
			for _, w := range kw {
				if _, ok := words[w]; ok {
					matched++
				}
			}
			score := float64(matched) / float64(len(kw))
			if score > best.Probability || (score == best.Probability && matched > best.Matched) {
				best.Probability = score
				best.Matched = matched
			}
		}
		if best.Probability > c.threshold {
			out = append(out, best)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].Matched > out[j].Matched
	})
	return out
}

// Respond picks a random response of the best intent for sentence, or
// UnknownReply when nothing matches.
func (c *Classifier) Respond(sentence string) Answer {
	preds := c.Classify(sentence)
	if len(preds) == 0 {
		return Answer{Tag: UnknownTag, Text: UnknownReply}
	}

	top := preds[0]
	for _, in := range c.intents {
		if in.Tag == top.Tag {
			return Answer{Tag: top.Tag, Probability: top.Probability, Text: c.pick(in.Responses)}
		}
	}
	return Answer{Tag: UnknownTag, Text: UnknownReply}
}

func (c *Classifier) pick(responses []string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return responses[c.rng.Intn(len(responses))]
}
