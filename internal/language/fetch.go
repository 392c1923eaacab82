package language

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// DefaultModelsPipelineURL is the public ULCA endpoint listing pipeline
// models and their language coverage.
const DefaultModelsPipelineURL = "https://meity-auth.ulcacontrib.org/ulca/apis/v0/model/getModelsPipeline"

// Pair is an available translation language pair.
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Fetcher retrieves language metadata from the models-pipeline endpoint.
type Fetcher struct {
	url        string
	authToken  string
	httpClient *http.Client
}

// NewFetcher creates a fetcher. An empty url selects the public endpoint.
func NewFetcher(url, authToken string, timeout time.Duration) *Fetcher {
	if url == "" {
		url = DefaultModelsPipelineURL
	}
	return &Fetcher{
		url:        url,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (f *Fetcher) post(ctx context.Context, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode models request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build models request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.authToken != "" {
		req.Header.Set("Authorization", f.authToken)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("models request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read models response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("models endpoint returned status %d: %s", resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode models response: %w", err)
	}
	return nil
}

// Scripts fetches the language-to-script mapping from the pipeline model
// listing.
func (f *Fetcher) Scripts(ctx context.Context) (map[string]string, error) {
	var data struct {
		PipelineModels []struct {
			Languages []struct {
				SourceLanguage   string `json:"sourceLanguage"`
				SourceScriptCode string `json:"sourceScriptCode"`
			} `json:"languages"`
		} `json:"pipelineModels"`
	}

	if err := f.post(ctx, map[string]any{}, &data); err != nil {
		return nil, err
	}

	scripts := make(map[string]string)
	for _, model := range data.PipelineModels {
		for _, lang := range model.Languages {
			if lang.SourceLanguage != "" && lang.SourceScriptCode != "" {
				scripts[lang.SourceLanguage] = lang.SourceScriptCode
			}
		}
	}
	return scripts, nil
}

// TranslationPairs fetches the available translation language pairs,
// sorted by source then target.
func (f *Fetcher) TranslationPairs(ctx context.Context) ([]Pair, error) {
	payload := map[string]any{
		"pipelineTasks": []map[string]any{
			{
				"taskType": "translation",
				"config": map[string]any{
					"language": map[string]string{
						"sourceLanguage": "",
						"targetLanguage": "",
					},
				},
			},
		},
	}

	var data struct {
		PipelineResponse []struct {
			Config struct {
				Language struct {
					SourceLanguage string `json:"sourceLanguage"`
					TargetLanguage string `json:"targetLanguage"`
				} `json:"language"`
			} `json:"config"`
		} `json:"pipelineResponse"`
	}

	if err := f.post(ctx, payload, &data); err != nil {
		return nil, err
	}

	seen := make(map[Pair]bool)
	var pairs []Pair
	for _, item := range data.PipelineResponse {
		p := Pair{
			Source: item.Config.Language.SourceLanguage,
			Target: item.Config.Language.TargetLanguage,
		}
		if p.Source == "" || p.Target == "" || seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Source != pairs[j].Source {
			return pairs[i].Source < pairs[j].Source
		}
		return pairs[i].Target < pairs[j].Target
	})
	return pairs, nil
}

// Refresh fetches the script mapping and merges it into the registry.
func (f *Fetcher) Refresh(ctx context.Context, reg *Registry) error {
	scripts, err := f.Scripts(ctx)
	if err != nil {
		return err
	}
	reg.Update(scripts)
	return nil
}
