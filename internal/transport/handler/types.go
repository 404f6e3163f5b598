package handler

// UploadResponse mirrors what upload clients already parse: the job id they
// poll /status with, plus the object key for direct retrieval.
type UploadResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
	S3Key    string `json:"s3_key"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}
