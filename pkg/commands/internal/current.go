package internal

import (
	"github.com/arthur-debert/deliveryman/pkg/release"
	"github.com/arthur-debert/deliveryman/pkg/types"
)

// CurrentInfo converts the current pointer for display
func CurrentInfo(c release.Current) types.CurrentInfo {
	return types.CurrentInfo{
		State:  c.State.String(),
		Name:   c.Name,
		Target: c.Target,
	}
}

// Current reads the current pointer of m for display
func Current(m *release.Manager) (types.CurrentInfo, error) {
	c, err := m.CurrentRelease()
	if err != nil {
		return types.CurrentInfo{}, err
	}
	return CurrentInfo(c), nil
}

// Releases lists releases of m, flagging the current one
func Releases(m *release.Manager) ([]types.ReleaseInfo, types.CurrentInfo, error) {
	current, err := m.CurrentRelease()
	if err != nil {
		return nil, types.CurrentInfo{}, err
	}
	names, err := m.ListReleases()
	if err != nil {
		return nil, types.CurrentInfo{}, err
	}

	infos := make([]types.ReleaseInfo, 0, len(names))
	for _, name := range names {
		p, err := m.ReleasePath(name)
		if err != nil {
			return nil, types.CurrentInfo{}, err
		}
		infos = append(infos, types.ReleaseInfo{
			Name:    name,
			Path:    p,
			Current: current.IsRelease(name),
		})
	}
	return infos, CurrentInfo(current), nil
}
