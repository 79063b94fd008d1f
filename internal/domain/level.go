package domain

// Leadership levels as issued by the central system.
const (
	LevelWorker             = "WORKER"
	LevelExecutiveAssistant = "EXECUTIVE_ASSISTANT"
	LevelAssistantHOD       = "ASSISTANT_HOD"
	LevelHOD                = "HOD"
	LevelMinister           = "MINISTER"
	LevelPastor             = "PASTOR"
	LevelMember             = "MEMBER"
)

var levelNames = map[string]string{
	LevelWorker:             "Worker",
	LevelExecutiveAssistant: "Executive Assistant",
	LevelAssistantHOD:       "Assistant HOD",
	LevelHOD:                "HOD",
	LevelMinister:           "Minister",
	LevelPastor:             "Pastor",
	LevelMember:             "Member",
}

// LevelName returns the display name of a leadership level.
func LevelName(level string) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return "Unknown Level"
}

// Honorific returns the greeting prefix for a cached-bio gender value.
func Honorific(gender string) string {
	switch gender {
	case "MALE":
		return "Sir"
	case "FEMALE":
		return "Lady"
	}
	return ""
}
