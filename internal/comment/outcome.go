package comment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ExecutionDetails 执行日志最后一条 result 记录中的指标
type ExecutionDetails struct {
	CostUSD       float64
	DurationMS    float64
	DurationAPIMS *float64
}

// OutcomeInput 外部传入的执行结果信号
type OutcomeInput struct {
	PrepareFailed bool
	PrepareError  string
	ClaudeFailed  bool
	// OutputFile 执行日志路径；为空时只使用 ClaudeFailed
	OutputFile string
}

// Outcome 最终展示的运行结果
type Outcome struct {
	ActionFailed bool
	ErrorDetails string
	Execution    *ExecutionDetails
	// ArtifactErr 读取执行日志失败的原因；此时只依据成功标志
	ArtifactErr error
}

var readFile = os.ReadFile

// ResolveOutcome 按优先级确定运行结果
// prepare 失败且有错误信息时以其为准；否则读取执行日志并依据 ClaudeFailed 判断
func ResolveOutcome(in OutcomeInput) Outcome {
	if in.PrepareFailed && in.PrepareError != "" {
		return Outcome{ActionFailed: true, ErrorDetails: in.PrepareError}
	}

	out := Outcome{ActionFailed: in.ClaudeFailed}
	if in.OutputFile == "" {
		return out
	}
	details, err := readExecutionDetails(in.OutputFile)
	if err != nil {
		out.ArtifactErr = err
		return out
	}
	out.Execution = details
	return out
}

type logRecord struct {
	Type          string   `json:"type"`
	CostUSD       *float64 `json:"cost_usd"`
	DurationMS    *float64 `json:"duration_ms"`
	DurationAPIMS *float64 `json:"duration_api_ms"`
}

// readExecutionDetails 解析 JSON 数组格式的执行日志
// 最后一条记录为 result 且包含 cost_usd 与 duration_ms 时返回指标，否则返回 nil
func readExecutionDetails(path string) (*ExecutionDetails, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read execution log: %w", err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse execution log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var last logRecord
	if err := json.Unmarshal(records[len(records)-1], &last); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse execution log record: %w", err)
	}
	if last.Type != "result" || last.CostUSD == nil || last.DurationMS == nil {
		return nil, nil
	}
	return &ExecutionDetails{CostUSD: *last.CostUSD, DurationMS: *last.DurationMS, DurationAPIMS: last.DurationAPIMS}, nil
}
