package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wordsanctuary/training-portal/internal/application/bootstrap"
	"github.com/wordsanctuary/training-portal/internal/application/form"
)

// TrainingAPI is the minimal interface the router requires from the
// training API client.
type TrainingAPI interface {
	bootstrap.Registrar
	form.SchemaSource
	form.Submitter
}

// Observer receives portal-level measurements.
type Observer interface {
	bootstrap.TransitionObserver
	form.CacheObserver
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Central     bootstrap.Central
	Training    TrainingAPI
	Attachments form.AttachmentStore // optional
	Observer    Observer             // optional
	Gatherer    prometheus.Gatherer  // optional; /metrics is mounted when set
}
