package healthlink

// ---------------------------------------------------------------------------
// Reference entities
// ---------------------------------------------------------------------------

// Hospital is a sending facility identified by its HIPE code.
type Hospital struct {
	Name string
	HIPE string
	DoH  string
}

// LabTest is an orderable laboratory test. LOINC is empty for local-only
// codes.
type LabTest struct {
	Code  string
	Name  string
	LOINC string
}

// Condition is a chronic condition attached to patients by prevalence.
type Condition struct {
	Name       string
	ICD10      string
	Prevalence float64
}

// Practice is a general practice a patient is registered with.
type Practice struct {
	Name    string `json:"name"`
	GMSCode string `json:"gms_code"`
	Eircode string `json:"eircode"`
}

// Consultant is a named hospital doctor.
type Consultant struct {
	Name      string
	Specialty Specialty
	MCN       string
}

// Specialty is a coded medical specialty.
type Specialty string

const (
	SpecialtyCardiology       Specialty = "CARDIOLOGY"
	SpecialtyNeurology        Specialty = "NEUROLOGY"
	SpecialtyOncology         Specialty = "ONCOLOGY"
	SpecialtyGeneralSurgery   Specialty = "GENERAL_SURGERY"
	SpecialtyOrthopaedics     Specialty = "ORTHOPAEDICS"
	SpecialtyGastroenterology Specialty = "GASTROENTEROLOGY"
	SpecialtyRespiratory      Specialty = "RESPIRATORY"
	SpecialtyEndocrinology    Specialty = "ENDOCRINOLOGY"
	SpecialtyRadiology        Specialty = "RADIOLOGY"
	SpecialtyPathology        Specialty = "PATHOLOGY"
	SpecialtyDermatology      Specialty = "DERMATOLOGY"
	SpecialtyOphthalmology    Specialty = "OPHTHALMOLOGY"
	SpecialtyENT              Specialty = "ENT"
	SpecialtyUrology          Specialty = "UROLOGY"
	SpecialtyGynaecology      Specialty = "GYNAECOLOGY"
	SpecialtyPaediatrics      Specialty = "PAEDIATRICS"
	SpecialtyPsychiatry       Specialty = "PSYCHIATRY"
	SpecialtyObstetrics       Specialty = "OBSTETRICS"
	SpecialtyAnaesthetics     Specialty = "ANAESTHETICS"
)

var specialtyDisplay = map[Specialty]string{
	SpecialtyCardiology:       "Cardiology",
	SpecialtyNeurology:        "Neurology",
	SpecialtyOncology:         "Oncology",
	SpecialtyGeneralSurgery:   "General Surgery",
	SpecialtyOrthopaedics:     "Orthopaedics",
	SpecialtyGastroenterology: "Gastroenterology",
	SpecialtyRespiratory:      "Respiratory",
	SpecialtyEndocrinology:    "Endocrinology",
	SpecialtyRadiology:        "Radiology",
	SpecialtyPathology:        "Pathology",
	SpecialtyDermatology:      "Dermatology",
	SpecialtyOphthalmology:    "Ophthalmology",
	SpecialtyENT:              "ENT",
	SpecialtyUrology:          "Urology",
	SpecialtyGynaecology:      "Gynaecology",
	SpecialtyPaediatrics:      "Paediatrics",
	SpecialtyPsychiatry:       "Psychiatry",
	SpecialtyObstetrics:       "Obstetrics",
	SpecialtyAnaesthetics:     "Anaesthetics",
}

// Display returns the human readable specialty name.
func (s Specialty) Display() string {
	if d, ok := specialtyDisplay[s]; ok {
		return d
	}
	return string(s)
}

// Valid reports whether s belongs to the fixed specialty set.
func (s Specialty) Valid() bool {
	_, ok := specialtyDisplay[s]
	return ok
}

// referralSpecialties are the specialties a GP referral can be addressed to.
var referralSpecialties = []Specialty{
	SpecialtyCardiology, SpecialtyNeurology, SpecialtyOncology, SpecialtyGeneralSurgery,
	SpecialtyOrthopaedics, SpecialtyGastroenterology, SpecialtyRespiratory, SpecialtyEndocrinology,
	SpecialtyRadiology, SpecialtyPathology, SpecialtyDermatology, SpecialtyOphthalmology,
	SpecialtyENT, SpecialtyUrology, SpecialtyGynaecology,
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

var hospitals = []Hospital{
	{"ST. VINCENT'S UNIVERSITY HOSPITAL", "907", "907"},
	{"MATER MISERICORDIAE UNIVERSITY HOSPITAL", "908", "908"},
	{"BEAUMONT HOSPITAL", "909", "909"},
	{"ST. JAMES'S HOSPITAL", "910", "910"},
	{"TALLAGHT UNIVERSITY HOSPITAL", "911", "911"},
	{"CONNOLLY HOSPITAL", "912", "912"},
	{"CORK UNIVERSITY HOSPITAL", "913", "913"},
	{"MERCY UNIVERSITY HOSPITAL", "914", "914"},
	{"UNIVERSITY HOSPITAL GALWAY", "915", "915"},
	{"UNIVERSITY HOSPITAL LIMERICK", "916", "916"},
	{"UNIVERSITY HOSPITAL WATERFORD", "917", "917"},
	{"MAYO UNIVERSITY HOSPITAL", "918", "918"},
	{"LETTERKENNY UNIVERSITY HOSPITAL", "919", "919"},
	{"SLIGO UNIVERSITY HOSPITAL", "920", "920"},
	{"NAAS GENERAL HOSPITAL", "921", "921"},
	{"ROTUNDA HOSPITAL", "932", "932"},
	{"AMNCH", "1049", "1049"},
	{"OUR LADY OF LOURDES HOSPITAL", "925", "925"},
	{"COOMBE WOMENS & INFANTS UNIVERSITY HOSPITAL", "933", "933"},
}

var labTests = []LabTest{
	{"FBC", "Full Blood Count", "57782-5"},
	{"U&E", "Urea and Electrolytes", "24362-6"},
	{"LFT", "Liver Function Tests", "24325-3"},
	{"TFT", "Thyroid Function Tests", "24323-8"},
	{"LIPIDS", "Lipid Profile", "57698-3"},
	{"HBA1C", "Haemoglobin A1c", "4548-4"},
	{"INR", "International Normalized Ratio", "6301-6"},
	{"CRP", "C-Reactive Protein", "1988-5"},
	{"ESR", "Erythrocyte Sedimentation Rate", "30341-2"},
	{"TROPONIN", "Troponin I", "10839-9"},
	{"MHH", "Mercy Hepatitis/HIV screen", ""},
	{"GLUCOSE", "Glucose Random", "2345-7"},
	{"TSH", "Thyroid Stimulating Hormone", "3016-3"},
	{"PSA", "Prostate Specific Antigen", "2857-1"},
	{"URINALYSIS", "Urinalysis Complete", "24357-6"},
}

var conditions = []Condition{
	{"Essential Hypertension", "I10", 0.25},
	{"Type 2 Diabetes Mellitus", "E11", 0.05},
	{"Chronic Obstructive Pulmonary Disease", "J44", 0.04},
	{"Atrial Fibrillation", "I48", 0.02},
	{"Coronary Artery Disease", "I25", 0.03},
	{"Osteoarthritis", "M15", 0.08},
	{"Depression", "F32", 0.06},
	{"Hyperlipidemia", "E78", 0.15},
}

var practices = []Practice{
	{"Temple Street Medical Centre", "12345", "D01 R2P4"},
	{"Grafton Street Family Practice", "12346", "D02 XY24"},
	{"Blackrock Medical Centre", "12347", "A94 E2W8"},
	{"Rathmines Health Clinic", "12348", "D06 H294"},
	{"Clontarf Family Doctors", "12349", "D03 T5P9"},
	{"Multicultural Health Centre", "12350", "D01 K5R7"},
	{"Parnell Street Medical Practice", "12351", "D01 T2X9"},
	{"Smithfield Community Health", "12352", "D07 P6W3"},
	{"Blanchardstown Family Clinic", "12353", "D15 Y8N4"},
	{"Ballymun Medical Centre", "12354", "D11 A5R8"},
}

var consultants = []Consultant{
	{"Dr. Mairead O'Brien", SpecialtyCardiology, "234567.1234"},
	{"Dr. Padraig Murphy", SpecialtyNeurology, "234568.1234"},
	{"Dr. Siobhan Kelly", SpecialtyOncology, "234569.1234"},
	{"Dr. Brendan Walsh", SpecialtyOrthopaedics, "234570.1234"},
	{"Dr. Nuala Ryan", SpecialtyGastroenterology, "234571.1234"},
	{"Dr. Ahmed Hassan", SpecialtyCardiology, "234572.1234"},
	{"Dr. Priya Patel", SpecialtyEndocrinology, "234573.1234"},
	{"Dr. Maria Rodriguez", SpecialtyPaediatrics, "234574.1234"},
	{"Dr. Wei Zhang", SpecialtyRadiology, "234575.1234"},
	{"Dr. Anna Kowalski", SpecialtyPsychiatry, "234576.1234"},
	{"Dr. Giovanni Rossi", SpecialtyGeneralSurgery, "234577.1234"},
	{"Dr. Fatima Al-Rashid", SpecialtyObstetrics, "234578.1234"},
	{"Dr. Klaus Mueller", SpecialtyAnaesthetics, "234579.1234"},
	{"Dr. Raj Sharma", SpecialtyOphthalmology, "234580.1234"},
	{"Dr. Elena Popescu", SpecialtyDermatology, "234581.1234"},
}

var maleFirstNames = []string{
	"Sean", "Patrick", "Michael", "John", "Brian", "Kevin", "Cian", "Oisin", "Darragh", "Conor",
	"Mohammed", "Ali", "Ahmed", "Omar", "Hassan", "Ibrahim",
	"Andrei", "Alexandru", "Mihai", "Cristian", "Stefan",
	"Piotr", "Jakub", "Tomasz", "Marcin", "Krzysztof",
	"Carlos", "Jose", "Miguel", "Diego", "Antonio",
	"Giovanni", "Marco", "Luca", "Francesco", "Andrea",
	"Johann", "Klaus", "Andreas", "Thomas",
	"Samuel", "Gabriel", "Emmanuel", "Joshua", "Benjamin",
	"Raj", "Arjun", "Vikram", "Rohit", "Amit",
	"Wei", "Ming", "Jun", "Lei", "Hao",
}

var femaleFirstNames = []string{
	"Mary", "Patricia", "Catherine", "Margaret", "Sarah", "Emma", "Niamh", "Aoife", "Siobhan", "Claire",
	"Fatima", "Aisha", "Zara", "Layla", "Amina", "Yasmin",
	"Maria", "Ana", "Elena", "Ioana", "Andreea",
	"Anna", "Katarzyna", "Agnieszka", "Magdalena", "Joanna",
	"Carmen", "Isabel", "Sofia", "Lucia", "Andrea",
	"Giulia", "Francesca", "Chiara", "Valentina", "Elisabetta",
	"Petra", "Sabine", "Christina", "Monika",
	"Grace", "Faith", "Hope", "Joy", "Charity",
	"Priya", "Anita", "Kavya", "Riya", "Meera",
	"Li", "Mei", "Yan", "Xin", "Ling",
}

var surnames = []string{
	"Murphy", "Kelly", "O'Sullivan", "Walsh", "Smith", "O'Brien", "Byrne", "Ryan", "O'Connor", "O'Neill",
	"Dunne", "McCarthy", "Gallagher", "O'Doherty", "Kennedy", "Lynch", "Murray", "Quinn", "Moore", "McLoughlin",
	"Hassan", "Ali", "Ahmed", "Khan", "Mohamed", "Hussain",
	"Popescu", "Ionescu", "Popa", "Radu", "Stan",
	"Kowalski", "Nowak", "Wisniewski", "Wojcik", "Kowalczyk",
	"Garcia", "Rodriguez", "Martinez", "Lopez", "Gonzalez",
	"Rossi", "Ferrari", "Russo", "Bianchi", "Romano",
	"Mueller", "Schmidt", "Schneider", "Fischer", "Weber",
	"Patel", "Singh", "Kumar", "Sharma", "Gupta",
	"Wang", "Li", "Zhang", "Liu", "Chen",
	"Silva", "Santos", "Oliveira", "Pereira", "Costa",
	"Andersson", "Johansson", "Karlsson", "Nilsson", "Eriksson",
	"Johnson", "Williams", "Brown", "Jones", "Miller",
}

var dublinStreets = []string{
	"Grafton Street", "O'Connell Street", "Dame Street", "Temple Bar", "Phoenix Park", "Ballsbridge", "Rathmines", "Clontarf",
	"Parnell Street", "Capel Street", "Moore Street", "Smithfield", "Stoneybatter", "Drumcondra", "Glasnevin", "Blanchardstown",
	"Tallaght", "Lucan", "Swords", "Balbriggan", "Ongar", "Tyrrelstown",
}

var towns = []string{
	"Dublin", "Cork", "Galway", "Limerick", "Waterford", "Kilkenny", "Ennis", "Tralee",
	"Castlebar", "Letterkenny", "Wexford", "Clonmel", "Sligo", "Athlone", "Drogheda", "Dundalk",
	"Navan", "Naas", "Mullingar", "Carlow",
}

var counties = []string{
	"Dublin", "Cork", "Galway", "Limerick", "Waterford", "Kilkenny",
	"Clare", "Kerry", "Mayo", "Donegal", "Wexford", "Tipperary", "Sligo",
}

var (
	eircodeAreas   = []string{"D01", "D02", "D03", "D04", "D05", "D06", "D07", "D08", "T12", "T23", "A94", "H91", "V92", "P85", "Y35", "F91", "N91"}
	eircodeLetter1 = []string{"P", "T", "K", "R", "X", "W", "E"}
	eircodeLetter2 = []string{"W", "E", "R", "T", "Y", "A", "S", "D"}
	ppsnLetters    = []string{"A", "B", "C", "D", "E", "F", "G", "H", "J", "K", "L", "M", "N", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z"}
	mrnPrefixes    = []string{"M", "P", "H"}
	genders        = []string{"M", "F"}
)

// Visit vocabularies.
var (
	resultPatientClasses = []string{"I", "O", "E", "G"}
	resultLocations      = []string{"LTESGP", "WARD1", "ICU", "ED", "OPD"}
	admissionClasses     = []string{"I", "O", "E"}
	admissionWards       = []string{"WARD1", "WARD2", "ICU", "ED"}
	admissionBeds        = []string{"BED1", "BED2", "BED3"}
	fillerSuffixes       = []string{"A", "B", "C", "D"}
)

type referralPriority struct {
	Code string
	Text string
}

var referralPriorities = []referralPriority{
	{"R", "Routine"},
	{"U", "Urgent"},
	{"S", "STAT"},
}
