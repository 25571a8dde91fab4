package manager

const unknownCondition = "Unknown"

var conditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	61: "Light rain",
	63: "Moderate rain",
	80: "Rain showers",
}

// ConditionText maps a WMO weather code to a display phrase.
func ConditionText(code int) string {
	if text, ok := conditions[code]; ok {
		return text
	}
	return unknownCondition
}
