// Package bhashini is a client for the Bhashini (ULCA) pipeline API.
// It builds compute-pipeline payloads for ASR, translation, and TTS tasks,
// submits them, and extracts the terminal task output.
package bhashini

// TaskType identifies a pipeline task.
type TaskType string

// Pipeline task types understood by the compute endpoint.
const (
	TaskASR         TaskType = "asr"
	TaskTranslation TaskType = "translation"
	TaskTTS         TaskType = "tts"
)

// Default service and model identifiers for each task. These are the
// AI4Bharat models exposed through the public pipeline.
const (
	DefaultASRServiceID = "ai4bharat/conformer-hi-gpu--t4"
	DefaultASRModelID   = "648025f27cdd753e77f461a9"

	DefaultNMTServiceID = "ai4bharat/indictrans-v2-all-gpu--t4"
	DefaultNMTModelID   = "641d1cd18ecee6735a1b372a"

	DefaultTTSServiceID = "ai4bharat/indic-tts-coqui-misc-gpu--t4"
	DefaultTTSModelID   = "63f7384c2ff3ab138f88c64e"
)

// ASR contract constants. The pipeline expects 16 kHz WAV input.
const (
	ASRAudioFormat  = "wav"
	ASRSamplingRate = 16000
)

// LanguageConfig carries source/target language and script codes for a task.
type LanguageConfig struct {
	SourceLanguage   string `json:"sourceLanguage"`
	SourceScriptCode string `json:"sourceScriptCode,omitempty"`
	TargetLanguage   string `json:"targetLanguage,omitempty"`
	TargetScriptCode string `json:"targetScriptCode,omitempty"`
}

// TaskConfig is the per-task configuration block.
type TaskConfig struct {
	ServiceID    string         `json:"serviceId"`
	ModelID      string         `json:"modelId"`
	Language     LanguageConfig `json:"language"`
	Domain       []string       `json:"domain,omitempty"`
	AudioFormat  string         `json:"audioFormat,omitempty"`
	SamplingRate int            `json:"samplingRate,omitempty"`
	Gender       string         `json:"gender,omitempty"`
}

// PipelineTask is one entry in the pipelineTasks array.
type PipelineTask struct {
	TaskType TaskType   `json:"taskType"`
	Config   TaskConfig `json:"config"`
}

// AudioInput is a base64-encoded audio blob.
type AudioInput struct {
	AudioContent string `json:"audioContent"`
}

// TextInput is a source text entry.
type TextInput struct {
	Source string `json:"source"`
}

// InputData carries the pipeline input: audio for speech tasks, text
// otherwise.
type InputData struct {
	Audio []AudioInput `json:"audio,omitempty"`
	Text  []TextInput  `json:"text,omitempty"`
}

// PipelineRequest is the compute-pipeline request body.
type PipelineRequest struct {
	PipelineTasks []PipelineTask `json:"pipelineTasks"`
	InputData     InputData      `json:"inputData"`
}

// TaskOutput is one output item from a completed task.
type TaskOutput struct {
	Source       string `json:"source,omitempty"`
	Target       string `json:"target,omitempty"`
	AudioContent string `json:"audioContent,omitempty"`
}

// TaskResponse is the per-task result in the pipeline response.
type TaskResponse struct {
	TaskType TaskType     `json:"taskType"`
	Output   []TaskOutput `json:"output"`
}

// PipelineResponse is the compute-pipeline response body.
type PipelineResponse struct {
	PipelineResponse []TaskResponse `json:"pipelineResponse"`
}

// Output returns the first output item for the given task type, or false
// if the task produced none.
func (r *PipelineResponse) Output(task TaskType) (TaskOutput, bool) {
	for _, tr := range r.PipelineResponse {
		if tr.TaskType == task && len(tr.Output) > 0 {
			return tr.Output[0], true
		}
	}
	return TaskOutput{}, false
}
