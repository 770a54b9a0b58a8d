package transcriber

import (
	"fmt"
	"os"
	"strings"
)

const groqURL = "https://api.groq.com/openai/v1/audio/transcriptions"

// Resolve builds a Transcriber from a backend locator of the form
// "scheme:argument":
//
//	fake:<canned text>      canned result, for tests and dry runs
//	exec:<command line>     local CLI, "{file}" and "{lang}" substituted
//	openai:<model>          OpenAI API, key from OPENAI_API_KEY
//	groq:<model>            Groq API, key from GROQ_API_KEY
//	https://<host>/<path>   any OpenAI-compatible endpoint, key optional
func Resolve(backend, language string) (Transcriber, error) {
	if strings.HasPrefix(backend, "http://") || strings.HasPrefix(backend, "https://") {
		t := NewOpenAI(backend, os.Getenv("OPENAI_API_KEY"), "")
		if language != "" {
			t.SetLanguage(language)
		}
		return t, nil
	}

	scheme, arg, ok := strings.Cut(backend, ":")
	if !ok {
		return nil, fmt.Errorf("invalid backend %q: want scheme:argument", backend)
	}

	var t Transcriber
	switch scheme {
	case "fake":
		t = NewFake(arg, nil)
	case "exec":
		e, err := NewExec(arg)
		if err != nil {
			return nil, err
		}
		t = e
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("openai backend requires OPENAI_API_KEY")
		}
		t = NewOpenAI("", key, arg)
	case "groq":
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("groq backend requires GROQ_API_KEY")
		}
		t = NewOpenAI(groqURL, key, arg)
	default:
		return nil, fmt.Errorf("unknown backend scheme %q", scheme)
	}

	if language != "" {
		t.SetLanguage(language)
	}
	return t, nil
}
