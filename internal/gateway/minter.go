package gateway

import (
	"log"

	"memeclash/internal/game"

	"github.com/google/uuid"
)

// StubMinter stands in for the on-chain reward mint while the real
// integration is pending. It hands back a generated digest so the rest of
// the pipeline (result recording, recovery retries) runs end to end.
type StubMinter struct {
	// Fail, when set, makes every mint return this error. Used to
	// exercise the recovery path.
	Fail error
}

func (m *StubMinter) MintReward(playerID string, mode game.Mode) (string, error) {
	if m.Fail != nil {
		return "", m.Fail
	}
	digest := uuid.NewString()
	log.Printf("stub mint player=%s mode=%s tx_digest=%s", playerID, mode, digest)
	return digest, nil
}
