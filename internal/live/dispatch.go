package live

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/model"
)

var errEmptyPayload = errors.New("missing data")

type idPayload struct {
	ID int64 `json:"id"`
}

// dispatch runs one client request against the attached store. Successful
// mutations reach every client through the store subscription; failures
// reach them as notices, and the sender also gets an error reply.
func (h *Hub) dispatch(ctx context.Context, c *client, msg Message) {
	h.mu.RLock()
	st := h.store
	h.mu.RUnlock()
	if st == nil {
		h.sendError(c, "Store not ready")
		return
	}

	var err error
	switch msg.Type {
	case "get_snapshot":
		h.sendTo(c, "snapshot", st.Snapshot())
		return
	case "add_meal":
		var m model.MealEntry
		if err = decode(msg.Data, &m); err == nil {
			_, err = st.AddMeal(ctx, m)
		}
	case "update_meal":
		var m model.MealEntry
		if err = decode(msg.Data, &m); err == nil {
			err = st.UpdateMeal(ctx, m)
		}
	case "delete_meal":
		var p idPayload
		if err = decode(msg.Data, &p); err == nil {
			err = st.DeleteMeal(ctx, p.ID)
		}
	case "add_water":
		var w model.WaterEntry
		if err = decode(msg.Data, &w); err == nil {
			_, err = st.AddWater(ctx, w)
		}
	case "update_water":
		var w model.WaterEntry
		if err = decode(msg.Data, &w); err == nil {
			err = st.UpdateWater(ctx, w)
		}
	case "delete_water":
		var p idPayload
		if err = decode(msg.Data, &p); err == nil {
			err = st.DeleteWater(ctx, p.ID)
		}
	case "add_weight":
		var w model.WeightMetric
		if err = decode(msg.Data, &w); err == nil {
			_, err = st.AddWeight(ctx, w)
		}
	case "update_weight":
		var w model.WeightMetric
		if err = decode(msg.Data, &w); err == nil {
			err = st.UpdateWeight(ctx, w)
		}
	case "delete_weight":
		var p idPayload
		if err = decode(msg.Data, &p); err == nil {
			err = st.DeleteWeight(ctx, p.ID)
		}
	case "update_settings":
		var p model.SettingsPatch
		if err = decode(msg.Data, &p); err == nil {
			_, err = st.UpdateSettings(ctx, p)
		}
	default:
		h.sendError(c, "Unknown message type")
		return
	}

	if err != nil {
		h.log.Debug("client request failed", "client", c.id, "type", msg.Type, "err", err)
		h.sendError(c, err.Error())
	}
}

func decode(data json.RawMessage, out any) error {
	if len(data) == 0 {
		return errEmptyPayload
	}
	return json.Unmarshal(data, out)
}
