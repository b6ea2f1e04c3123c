package route

import (
	"fmt"
	"strings"
)

// instructionFor renders one OSRM maneuver as a human instruction.
// legIndex/legCount distinguish waypoint arrivals from the final arrival.
func instructionFor(step osrmStep, legIndex, legCount int) string {
	m := step.Maneuver
	var instruction string

	switch m.Type {
	case "depart":
		instruction = "Head " + orStraight(m.Modifier)
	case "arrive":
		if legIndex < legCount-1 {
			return fmt.Sprintf("Arrive at waypoint %d", legIndex+1)
		}
		return "Arrive at destination"
	case "turn", "end of road":
		instruction = "Turn " + orStraight(m.Modifier)
	case "merge":
		instruction = "Merge"
	case "ramp", "on ramp":
		instruction = "Take the ramp"
	case "off ramp":
		instruction = "Take the exit"
	case "fork":
		switch m.Modifier {
		case "left", "slight left":
			instruction = "Take the left fork"
		case "right", "slight right":
			instruction = "Take the right fork"
		default:
			instruction = "Take the fork"
		}
	case "roundabout", "rotary":
		instruction = fmt.Sprintf("Enter roundabout and take exit %d", m.Exit)
	case "continue", "new name":
		instruction = "Continue " + orStraight(m.Modifier)
	case "":
		instruction = "Continue"
	default:
		instruction = m.Type
	}

	if name := roadName(step); name != "" {
		instruction += " onto " + name
	}
	return instruction
}

func orStraight(modifier string) string {
	if modifier == "" {
		return "straight"
	}
	return modifier
}

// roadName picks the step's street name or ref, skipping the backend's
// unnamed-road placeholder.
func roadName(step osrmStep) string {
	name := strings.TrimSpace(step.Name)
	if name == "" {
		name = strings.TrimSpace(step.Ref)
	}
	if strings.EqualFold(name, "unnamed road") {
		return ""
	}
	return name
}
