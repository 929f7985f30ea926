package middleware

import (
	"fmt"
	"strconv"

	"github.com/VELOCITY6097/valorant-tourney/models"
	"github.com/golang-jwt/jwt/v4"
)

// actorFromClaims builds an Actor from the token claims. The user ID claim
// is a platform snowflake; it travels as a string because snowflakes do not
// survive a float64 round trip, but a numeric claim is tolerated for small
// IDs used in tests.
func actorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	rawID, ok := claims[jwtClaimUserID]
	if !ok {
		return models.Actor{}, fmt.Errorf("missing %q claim", jwtClaimUserID)
	}

	var userID int64
	switch v := rawID.(type) {
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			return models.Actor{}, fmt.Errorf("invalid %q claim: %q", jwtClaimUserID, v)
		}
		userID = parsed
	case float64:
		if v != float64(int64(v)) || v <= 0 {
			return models.Actor{}, fmt.Errorf("invalid %q claim: %f", jwtClaimUserID, v)
		}
		userID = int64(v)
	default:
		return models.Actor{}, fmt.Errorf("invalid type for %q claim: %T", jwtClaimUserID, rawID)
	}

	caps := models.CapabilitySet{}
	if rawCaps, ok := claims[jwtClaimCapabilities].([]interface{}); ok {
		for _, rawCap := range rawCaps {
			name, ok := rawCap.(string)
			if !ok {
				return models.Actor{}, fmt.Errorf("invalid capability entry: %v", rawCap)
			}
			switch c := models.Capability(name); c {
			case models.CapabilityAdmin, models.CapabilityOverwatch, models.CapabilityStaff:
				caps[c] = true
			default:
				return models.Actor{}, fmt.Errorf("unknown capability %q", name)
			}
		}
	}

	return models.Actor{UserID: userID, Capabilities: caps}, nil
}
