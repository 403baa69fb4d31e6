package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"sawt/internal/asr"
	"sawt/internal/audio"
)

func main() {
	var (
		inputFile  = flag.String("i", "", "Input audio file (WAV format, mono 16 kHz)")
		outputFile = flag.String("o", "", "Output file (default: stdout)")
		format     = flag.String("format", "text", "Output format: text, json, srt")
		modelDir   = flag.String("model", "models/moonshine-tiny-ar", "Model directory path")
		engineName = flag.String("engine", asr.EngineMoonshine, "Engine: moonshine or whisper")
		numThreads = flag.Int("threads", 2, "Number of threads for inference")
		verbose    = flag.Bool("v", false, "Verbose output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i audio.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i audio.wav -o output.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i audio.wav -format json -o output.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i audio.wav -engine whisper -model models/sherpa-onnx-whisper-tiny\n", os.Args[0])
	}

	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: Input file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if _, err := os.Stat(*inputFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: Input file not found: %s\n", *inputFile)
		os.Exit(1)
	}

	if *format != "text" && *format != "json" && *format != "srt" {
		fmt.Fprintf(os.Stderr, "Error: Invalid format '%s'. Must be: text, json, or srt\n", *format)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Loading model from: %s\n", *modelDir)
	}

	var config *asr.Config
	var err error
	if *engineName == asr.EngineMoonshine {
		config, err = asr.NewConfig(*modelDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to load model config: %v\n", err)
			fmt.Fprintf(os.Stderr, "\nHint: Export the model first:\n")
			fmt.Fprintf(os.Stderr, "  python scripts/export_moonshine_ar_onnx.py --output-dir %s\n", *modelDir)
			os.Exit(1)
		}
	} else {
		config = asr.DefaultConfig(*modelDir)
		config.Engine = *engineName
	}
	config.NumThreads = *numThreads
	if lib := os.Getenv("SAWT_ORT_LIBRARY"); lib != "" {
		config.ORTLibrary = lib
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Creating %s engine...\n", config.Engine)
	}

	engine, err := asr.NewEngine(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if *verbose {
		fmt.Fprintf(os.Stderr, "Transcribing: %s\n", *inputFile)
	}

	samples, sampleRate, err := audio.ReadWAV(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read audio: %v\n", err)
		os.Exit(1)
	}

	result, err := engine.Transcribe(context.Background(), samples, sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Transcription failed: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Transcription completed in %.2f seconds (%d tokens)\n", result.Duration, result.Tokens)
	}

	var output string
	switch *format {
	case "json":
		output, err = result.FormatAsJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to format JSON: %v\n", err)
			os.Exit(1)
		}
	case "srt":
		output = result.FormatAsSRT()
	default: // text
		output = result.FormatAsText()
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to write output file: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Output written to: %s\n", *outputFile)
		}
	} else {
		fmt.Println(output)
	}
}
