package i18n

// Catalog maps message keys to templates. Positional parameters are written
// {0}, {1}, ...
type Catalog map[string]string

var English = Catalog{
	"validation.required":     "Required",
	"validation.invalidEmail": "Invalid email address",
	"validation.invalidPhone": "Invalid phone number format",
	"validation.invalidDate":  "Invalid date, expected YYYY-MM-DD",
	"validation.number":       "Must be a number",
	"validation.min":          "Must be at least {0}",
	"validation.max":          "Must be at most {0}",
	"validation.oneOf":        "Must be one of: {0}",

	"citizens.steps.personal":            "Personal Information",
	"citizens.steps.contact":             "Contact Information",
	"citizens.steps.medical":             "Medical & Insurance",
	"citizens.nationalId.required":       "National ID is required",
	"citizens.nationalId.digits":         "National ID must be {0} digits",
	"citizens.nationalId.taken":          "A citizen with this National ID already exists",
	"citizens.name.required":             "Full name is required",
	"citizens.name.min":                  "Name must be at least {0} characters",
	"citizens.dateOfBirth.required":      "Date of birth is required",
	"citizens.dateOfBirth.future":        "Date of birth cannot be in the future",
	"citizens.gender.required":           "Gender is required",
	"citizens.address.required":          "Address is required",
	"citizens.phone.required":            "Phone number is required",
	"citizens.email.required":            "Email is required",
	"citizens.emergencyContact.required": "Emergency contact name is required",
	"citizens.emergencyPhone.required":   "Emergency contact phone is required",
	"citizens.bloodType.required":        "Blood type is required",
	"citizens.insuranceType.required":    "Insurance type is required",
	"citizens.notFound":                  "Citizen not found",
	"citizens.created":                   "Citizen registered successfully",
	"citizens.updated":                   "Citizen updated successfully",

	"cardManagement.issueNewCard":      "Issue New Card",
	"cardManagement.cardNotFound":      "Card not found",
	"cardManagement.noCitizenFound":    "No citizen found",
	"cardManagement.cardIssueSuccess":  "Card issued successfully",
	"cardManagement.cardSuspended":     "Card suspended successfully",
	"cardManagement.cardRenewed":       "Card renewed successfully",
	"cardManagement.cardPrinted":       "Card sent to printer",
	"cardManagement.alreadyHasCard":    "This citizen already holds an active card",
	"cardManagement.notActive":         "Only active cards can be used",
	"cardManagement.invalidTransition": "This action is not available for the card's current status",
	"cardManagement.usageRecorded":     "Card usage recorded",

	"institutions.details":              "Institution Details",
	"institutions.institutionNotFound":  "Institution not found",
	"institutions.createSuccess":        "Institution added successfully",
	"institutions.updateSuccess":        "Institution updated successfully",
	"institutions.institutionSuspended": "Institution suspended successfully",
	"institutions.institutionDeleted":   "Institution deleted successfully",
	"institutions.licenseRenewed":       "License renewed successfully",
	"institutions.licenseTaken":         "An institution with this license number already exists",
	"institutions.invalidTransition":    "This action is not available for the institution's current status",
	"institutions.notActive":            "Institution is not active",

	"dashboard.alerts.pendingCards":     "{0} cards pending issuance",
	"dashboard.alerts.expiringLicenses": "{0} institution licenses expiring within {1} days",
	"dashboard.alerts.expiredCards":     "{0} cards have expired",

	"forms.notFound":         "Form session not found or expired",
	"forms.unknownForm":      "Unknown form",
	"forms.notLastStep":      "Submit is only available on the last step",
	"forms.pending":          "A submission is already in progress",
	"forms.alreadySubmitted": "This form has already been submitted",
	"forms.submissionFailed": "Submission failed, please try again",
	"forms.invalidFields":    "Please correct the highlighted fields",
	"forms.cancelled":        "Submission cancelled",
	"forms.closed":           "This form has been closed",
	"forms.notCandidate":     "Select a citizen from the current search results",

	"auth.invalidCredentials": "Invalid email or password",
	"auth.unauthorized":       "Authentication required",
	"auth.forbidden":          "Insufficient permissions",
	"auth.emailTaken":         "An account with this email already exists",
	"auth.invalidRefresh":     "Invalid or revoked refresh token",
	"auth.refreshExpired":     "Refresh token expired",
	"auth.loggedOut":          "Logged out successfully",

	"terminals.keyRequired":  "API key is required in X-API-Key header",
	"terminals.invalidKey":   "Invalid or expired API key",
	"terminals.keyNotFound":  "Terminal key not found",
	"terminals.keyGenerated": "Terminal key generated; it will not be shown again",
	"terminals.keyRevoked":   "Terminal key revoked",
	"terminals.tapRecorded":  "Card tap recorded",

	"list.unknownFilter": "Unknown filter",
	"errors.internal":    "Internal server error",
	"errors.badRequest":  "Invalid request",
}

// Arabic covers the messages shown on forms and list views. Missing keys fall
// back to English.
var Arabic = Catalog{
	"validation.required":     "مطلوب",
	"validation.invalidEmail": "عنوان بريد إلكتروني غير صالح",
	"validation.invalidPhone": "تنسيق رقم الهاتف غير صالح",
	"validation.invalidDate":  "تاريخ غير صالح",
	"validation.number":       "يجب أن يكون رقمًا",
	"validation.min":          "يجب ألا يقل عن {0}",
	"validation.max":          "يجب ألا يزيد عن {0}",
	"validation.oneOf":        "يجب أن يكون أحد: {0}",

	"citizens.nationalId.required": "الرقم القومي مطلوب",
	"citizens.nationalId.digits":   "يجب أن يتكون الرقم القومي من {0} رقمًا",
	"citizens.name.required":       "الاسم الكامل مطلوب",
	"citizens.name.min":            "يجب ألا يقل الاسم عن {0} أحرف",
	"citizens.dateOfBirth.future":  "لا يمكن أن يكون تاريخ الميلاد في المستقبل",
	"citizens.notFound":            "المواطن غير موجود",

	"cardManagement.cardNotFound":   "البطاقة غير موجودة",
	"cardManagement.noCitizenFound": "لم يتم العثور على مواطن",

	"institutions.institutionNotFound": "المؤسسة غير موجودة",

	"auth.invalidCredentials": "البريد الإلكتروني أو كلمة المرور غير صحيحة",
}
