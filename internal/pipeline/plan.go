package pipeline

import (
	"cilicili/internal/model"
	"cilicili/internal/util/media"
)

// Plan describes what Run would do for a request, without doing it.
type Plan struct {
	Target       model.DownloadTarget
	VideoOffered bool
	AudioOffered bool
	Expected     model.OutcomeKind // Assuming every fetch and the merge succeed.
	OutputPath   string
	EstBytes     int64 // Sum of the offered streams' size estimates.
}

// PlanRequest computes a Plan for req under outDir. It does not create
// directories or contact the network.
func PlanRequest(req model.DownloadRequest, outDir string) (Plan, error) {
	if !req.Video.Offered() {
		return Plan{}, model.NewError(model.ErrMissingInput, "plan", "", errVideoMissing)
	}
	target, err := media.TargetFor(req.Title, outDir)
	if err != nil {
		return Plan{}, err
	}
	p := Plan{
		Target:       target,
		VideoOffered: true,
		AudioOffered: req.Audio.Offered(),
		Expected:     model.OutcomeVideoOnly,
		OutputPath:   target.FinalPath,
		EstBytes:     req.Video.Size,
	}
	if p.AudioOffered {
		p.Expected = model.OutcomeMuxed
		p.EstBytes += req.Audio.Size
	}
	return p, nil
}

// Plan is PlanRequest using the service's output directory.
func (s *Service) Plan(req model.DownloadRequest) (Plan, error) {
	return PlanRequest(req, s.outDir)
}
