package knowledge

// Recommendation is a bundled entry mapping a symptom to medications a
// clinician commonly suggests and simple home remedies. These are generic
// over-the-counter suggestions only, never a substitute for the transcript.
type Recommendation struct {
	Medications []string
	Remedies    []string
}

var staticTable = map[string]Recommendation{
	"headache": {
		Medications: []string{"Ibuprofen", "Acetaminophen"},
		Remedies:    []string{"Rest in a quiet dark room", "Stay hydrated"},
	},
	"migraine": {
		Medications: []string{"Sumatriptan", "Ibuprofen"},
		Remedies:    []string{"Rest in a dark room", "Cold compress on the forehead"},
	},
	"fever": {
		Medications: []string{"Acetaminophen", "Ibuprofen"},
		Remedies:    []string{"Drink plenty of fluids", "Rest"},
	},
	"cough": {
		Medications: []string{"Dextromethorphan", "Guaifenesin"},
		Remedies:    []string{"Honey in warm water", "Use a humidifier"},
	},
	"sore throat": {
		Medications: []string{"Benzocaine lozenges", "Acetaminophen"},
		Remedies:    []string{"Gargle with warm salt water", "Drink warm fluids"},
	},
	"congestion": {
		Medications: []string{"Pseudoephedrine", "Oxymetazoline"},
		Remedies:    []string{"Steam inhalation", "Saline nasal spray"},
	},
	"allergies": {
		Medications: []string{"Loratadine", "Cetirizine"},
		Remedies:    []string{"Avoid known triggers", "Keep windows closed during high pollen"},
	},
	"nausea": {
		Medications: []string{"Bismuth subsalicylate", "Dimenhydrinate"},
		Remedies:    []string{"Sip clear fluids", "Eat bland foods"},
	},
	"heartburn": {
		Medications: []string{"Omeprazole", "Famotidine"},
		Remedies:    []string{"Avoid late meals", "Elevate the head of the bed"},
	},
	"diarrhea": {
		Medications: []string{"Loperamide"},
		Remedies:    []string{"Oral rehydration", "Avoid dairy until recovered"},
	},
	"back pain": {
		Medications: []string{"Ibuprofen", "Naproxen"},
		Remedies:    []string{"Gentle stretching", "Alternate heat and ice"},
	},
	"insomnia": {
		Medications: []string{"Melatonin", "Diphenhydramine"},
		Remedies:    []string{"Keep a regular sleep schedule", "Avoid screens before bed"},
	},
	"hypertension": {
		Medications: []string{"Lisinopril", "Amlodipine"},
		Remedies:    []string{"Reduce salt intake", "Regular moderate exercise"},
	},
}
