package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/TacImpulse/ultimate-voice-bridge/internal/conversation"
	"github.com/TacImpulse/ultimate-voice-bridge/internal/synth"
)

// convgen renders a dialogue script to a WAV file from the command line,
// without running the HTTP service. With no TTS URL it uses the mock
// backend, which makes it handy for timing and pause-model experiments.

type options struct {
	scriptPath   string
	outPath      string
	style        string
	voicesRaw    string
	interactions bool
	background   bool
	volume       int
	emotions     bool
	seed         int64
	seedSet      bool
	workers      int
	ttsURL       string
	apiKey       string
	timeout      time.Duration
	verbose      bool
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "convgen: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "convgen: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var cfg options
	var timeoutMS int

	flag.StringVar(&cfg.scriptPath, "script", "-", "script file path, or - for stdin")
	flag.StringVar(&cfg.outPath, "out", "conversation.wav", "output WAV path")
	flag.StringVar(&cfg.style, "style", "natural", "conversation style")
	flag.StringVar(&cfg.voicesRaw, "voices", "", "speaker to voice mapping, e.g. 'Alice=voice-a,Bob=voice-b'")
	flag.BoolVar(&cfg.interactions, "interactions", false, "insert natural interjections between turns")
	flag.BoolVar(&cfg.background, "background", false, "mix in style-appropriate background ambience")
	flag.IntVar(&cfg.volume, "volume", 50, "background ambience volume (10-100)")
	flag.BoolVar(&cfg.emotions, "emotions", true, "detect per-segment emotions")
	flag.Int64Var(&cfg.seed, "seed", 0, "random seed for reproducible runs (0 = entropy)")
	flag.IntVar(&cfg.workers, "workers", 2, "concurrent synthesis workers")
	flag.StringVar(&cfg.ttsURL, "tts-url", "", "TTS server base URL (empty = mock backend)")
	flag.StringVar(&cfg.apiKey, "api-key", "", "TTS server API key")
	flag.IntVar(&timeoutMS, "timeout-ms", 60000, "per-request TTS timeout in milliseconds")
	flag.BoolVar(&cfg.verbose, "verbose", true, "print per-segment progress")
	flag.Parse()

	cfg.ttsURL = strings.TrimRight(strings.TrimSpace(cfg.ttsURL), "/")
	cfg.timeout = time.Duration(timeoutMS) * time.Millisecond
	cfg.seedSet = cfg.seed != 0
	if cfg.voicesRaw == "" {
		return options{}, fmt.Errorf("voices mapping is required")
	}
	if cfg.workers <= 0 {
		return options{}, fmt.Errorf("workers must be > 0")
	}
	if timeoutMS < 1000 {
		return options{}, fmt.Errorf("timeout-ms must be >= 1000")
	}
	return cfg, nil
}

func run(cfg options) error {
	script, err := readScript(cfg.scriptPath)
	if err != nil {
		return err
	}
	voiceMap, err := parseVoices(cfg.voicesRaw)
	if err != nil {
		return err
	}
	style, err := conversation.ParseStyle(cfg.style)
	if err != nil {
		return err
	}

	var backend synth.Synthesizer = synth.NewMockBackend()
	if cfg.ttsURL != "" {
		backend, err = synth.NewHTTPBackend(synth.HTTPConfig{
			BaseURL: cfg.ttsURL,
			APIKey:  cfg.apiKey,
			Timeout: cfg.timeout,
		})
		if err != nil {
			return err
		}
	}
	engine := conversation.NewEngine(backend, conversation.EngineConfig{Workers: cfg.workers})

	req := conversation.Request{
		Script:                 script,
		SpeakerVoiceMap:        voiceMap,
		Style:                  style,
		AddNaturalInteractions: cfg.interactions,
		IncludeBackgroundSound: cfg.background,
		BackgroundSoundVolume:  cfg.volume,
		EmotionalIntelligence:  cfg.emotions,
	}
	if cfg.seedSet {
		seed := cfg.seed
		req.RandomSeed = &seed
	}
	if cfg.verbose {
		req.OnProgress = func(p conversation.Progress) {
			status := "ok"
			if p.Failed {
				status = "FAILED"
			}
			fmt.Fprintf(os.Stderr, "segment %d/%d %s (%s) %s\n",
				p.SegmentIndex+1, p.SegmentCount, p.Speaker, p.Emotion, status)
		}
	}

	started := time.Now()
	res, err := engine.Generate(context.Background(), req)
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfg.outPath, res.WAV, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.outPath, err)
	}

	fmt.Printf("wrote %s (%d bytes) in %s\n", cfg.outPath, len(res.WAV), time.Since(started).Round(time.Millisecond))
	fmt.Printf("conversation %s\n", res.ID)
	fmt.Printf("  duration:   %.2fs\n", res.Metadata.DurationSeconds)
	fmt.Printf("  speakers:   %d\n", res.Metadata.SpeakerCount)
	fmt.Printf("  words:      %d\n", res.Metadata.WordCount)
	fmt.Printf("  complexity: %.3f\n", res.Metadata.InteractionComplexity)
	if res.Metadata.SegmentsFailed > 0 {
		fmt.Printf("  failed:     %d segments\n", res.Metadata.SegmentsFailed)
	}
	printEmotions(res.Metadata.EmotionDistribution)
	return nil
}

func readScript(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func parseVoices(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		speaker, voice, ok := strings.Cut(pair, "=")
		speaker = strings.TrimSpace(speaker)
		voice = strings.TrimSpace(voice)
		if !ok || speaker == "" || voice == "" {
			return nil, fmt.Errorf("invalid voices entry %q (expected Speaker=voice-id)", pair)
		}
		out[speaker] = voice
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("voices mapping is empty")
	}
	return out, nil
}

func printEmotions(dist map[conversation.EmotionType]float64) {
	if len(dist) == 0 {
		return
	}
	keys := make([]string, 0, len(dist))
	for e := range dist {
		keys = append(keys, string(e))
	}
	sort.Strings(keys)
	fmt.Printf("  emotions:")
	for _, k := range keys {
		fmt.Printf(" %s=%.0f%%", k, dist[conversation.EmotionType(k)]*100)
	}
	fmt.Println()
}
