// internal/common/camunda/jobs.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "itinerary-workers/internal/common/errors"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/pkg/registry"
)

// DecodeJob checks the job variables against the registered input schema for taskType and
// decodes them into dst. Schema violations come back as validation errors.
func DecodeJob(job entities.Job, taskType string, dst interface{}) error {
	return DecodeVariables(job.Variables, taskType, dst)
}

// DecodeVariables is DecodeJob for a raw variables document.
func DecodeVariables(variables, taskType string, dst interface{}) error {
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("job variables are not a JSON object: %v", err))
	}

	result, err := registry.Default().ValidateInput(taskType, vars)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !result.Valid {
		return apperrors.NewValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := json.Unmarshal([]byte(variables), dst); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("decode job variables: %v", err))
	}
	return nil
}

// CompleteJob completes the job with output as its variables.
func CompleteJob(client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		log.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
