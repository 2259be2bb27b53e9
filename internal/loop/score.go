package loop

import (
	"github.com/tomz197/tempest/internal/loop/config"
)

// AddScore adds points, tracks the high score and pays out milestone rewards.
// Every multiple of 3000 crossed grants a bomb, every even one also a shield.
// A single call may cross several milestones.
func (s *Session) AddScore(points int) {
	p := &s.Player
	p.Score += points

	if p.Score > p.HighScore {
		p.HighScore = p.Score
		if s.store != nil {
			s.store.SaveHighScore(p.HighScore)
		}
	}

	m := p.Score / config.MilestonePoints
	if m <= p.LastBombMilestone {
		return
	}
	p.Bombs = min(p.Bombs+m-p.LastBombMilestone, config.MaxBombs)
	for k := p.LastBombMilestone + 1; k <= m; k++ {
		if k%2 == 0 {
			p.Shields = min(p.Shields+1, config.MaxShields)
		}
	}
	p.LastBombMilestone = m
	s.emit(Event{Type: EventMessage, Message: "BOMB ACQUIRED!", Value: m})
}
