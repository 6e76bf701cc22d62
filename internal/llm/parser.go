package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cleanMarkdownWrapper strips a ```json fenced block around a response.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	// Some models add commentary around the object.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		content = content[start : end+1]
	}
	return strings.TrimSpace(content)
}

// parseClassification decodes the JSON verdict shared by every provider.
func parseClassification(content string) (ClassificationResponse, error) {
	var jsonResp struct {
		DeductionType string  `json:"deductionType"`
		Reasoning     string  `json:"reasoning"`
		Confidence    float64 `json:"confidence"`
		IsDeductible  bool    `json:"isDeductible"`
	}

	content = cleanMarkdownWrapper(content)
	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	confidence := jsonResp.Confidence
	// Accept both 0-1 and 0-100 scales.
	if confidence > 0 && confidence <= 1 {
		confidence *= 100
	}
	if confidence < 0 || confidence > 100 {
		return ClassificationResponse{}, fmt.Errorf("confidence out of range: %v", jsonResp.Confidence)
	}

	if jsonResp.IsDeductible && strings.TrimSpace(jsonResp.DeductionType) == "" {
		return ClassificationResponse{}, fmt.Errorf("deductible verdict without a deduction type")
	}

	return ClassificationResponse{
		IsDeductible:  jsonResp.IsDeductible,
		DeductionType: strings.TrimSpace(jsonResp.DeductionType),
		Confidence:    confidence,
		Reasoning:     jsonResp.Reasoning,
	}, nil
}
