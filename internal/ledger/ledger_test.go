package ledger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/the-files-must-flow/internal/model"
)

func TestLedger(t *testing.T) {
	t.Run("append preserves order", func(t *testing.T) {
		led := New()

		for i := 0; i < 5; i++ {
			led.Append(model.OperationRecord{ID: fmt.Sprintf("op-%d", i)})
		}

		records := led.Records()
		assert.Len(t, records, 5)
		for i, record := range records {
			assert.Equal(t, fmt.Sprintf("op-%d", i), record.ID)
		}
	})

	t.Run("records returns a snapshot", func(t *testing.T) {
		led := New()
		led.Append(model.OperationRecord{ID: "op-1"})

		snapshot := led.Records()
		led.Append(model.OperationRecord{ID: "op-2"})

		assert.Len(t, snapshot, 1)
		assert.Equal(t, 2, led.Len())

		// Mutating the snapshot must not affect the ledger.
		snapshot[0].ID = "tampered"
		assert.Equal(t, "op-1", led.Records()[0].ID)
	})

	t.Run("concurrent appends", func(t *testing.T) {
		led := New()

		const n = 100
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				led.Append(model.OperationRecord{ID: fmt.Sprintf("op-%d", i)})
			}(i)
		}
		wg.Wait()

		assert.Equal(t, n, led.Len())

		seen := make(map[string]struct{})
		for _, record := range led.Records() {
			seen[record.ID] = struct{}{}
		}
		assert.Len(t, seen, n)
	})
}
