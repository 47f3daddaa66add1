package catlink

// Vendor API request signing secret and password public key are fixed
// constants shipped inside the official mobile application.
const (
	SignKey = "00109190907746a7ad0e2139b6d09ce47551770157fe4ac5922f3a5454c82712"

	RSAPublicKey = "MIGfMA0GCSqGSIb3DQEBAQUAA4GNADCBiQKBgQCCA9I+iEl2AI8dnhdwwxPxHVK8iNAt6aTq6UhNsLsguWS5qtbLnuGz2RQdfNSaKSU2B6D/vE2gb1fM6f1A5cKndqF/riWGWn1EfL3FFQZduOTxoA0RTQzhrTa5LHcJ/an/NuHUwShwIOij0Mf4g8faTe4FT7/HdAoK7uW0cG9mZwIDAQAB"

	Platform  = "ANDROID"
	UserAgent = "okhttp/3.10.0"

	// Vendor return code signalling an invalid or expired session token.
	ReturnCodeIllegalToken = 1002
)

// Regional API bases. An explicit api_base in the account config wins.
var APIServers = map[string]string{
	"global":    "https://app.catlinks.cn/api/",
	"china":     "https://app-sh.catlinks.cn/api/",
	"usa":       "https://app-usa.catlinks.cn/api/",
	"singapore": "https://app-sgp.catlinks.cn/api/",
}

// Request parameter placement.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPostGet = "POST_GET"
)

// Vendor REST endpoints.
const (
	APILoginPassword = "login/password"
	APIDeviceList    = "token/device/union/list/sorted"
	APIDeviceInfo    = "token/device/info"
	APIChangeMode    = "token/device/changeMode"
	APIActionCmd     = "token/device/actionCmd"
	APICatList       = "token/pet/health/v3/cats"
	APICatSummary    = "token/pet/health/v3/summarySimple"

	APILitterboxInfo       = "token/litterbox/info"
	APILitterboxChangeMode = "token/litterbox/changeMode"
	APILitterboxActionCmd  = "token/litterbox/actionCmd"
	APIBoxFullSetting      = "token/litterbox/boxFullSetting"
	APIReplaceGarbageBag   = "token/litterbox/replaceGarbageBagCmd"
	APIConsumableReset     = "token/device/union/consumableReset"
	APILitterboxLogTop5    = "token/litterbox/stats/log/top5"
	APIScooperLogTop5      = "token/device/scooper/stats/log/top5"

	APIFeederDetail  = "token/device/feeder/detail"
	APIFeederLogTop5 = "token/device/feeder/stats/log/top5"
	APIFeederFoodOut = "token/device/feeder/foodOut"

	APIPureDetail  = "token/device/purepro/detail"
	APIPureRunMode = "token/device/purepro/runMode"
	APIPureLogTop5 = "token/device/purepro/stats/log/top5"

	APIUltraBriefInfo   = "token/visualScooper/briefInfo"
	APIUltraLogTimeline = "token/litterbox/stats/log/timeline/v2"

	APIC08Info              = "token/litterbox/info/c08"
	APIC08ActionCmd         = "token/litterbox/actionCmd/v3"
	APIC08PetWeightUpdate   = "token/litterbox/pet/weight/autoUpdate"
	APIC08CatLitterSetting  = "token/litterbox/catLitterSetting"
	APIC08AutoBurial        = "token/litterbox/deepClean/autoBurial"
	APIC08ContinuousClean   = "token/litterbox/deepClean/continuousCleaning"
	APIC08KittyModelSwitch  = "token/litterbox/kittyModelSwitch"
	APIC08KeyLock           = "token/litterbox/keyLock"
	APIC08IndicatorLight    = "token/litterbox/indicatorLightSetting"
	APIC08KeypadTone        = "token/litterbox/keypadTone"
	APIC08SafeTimeSetting   = "token/litterbox/safeTimeSetting"
	APIC08NoticeConfigSet   = "token/litterbox/noticeConfig/set"
	APIC08NoticeConfigList  = "token/litterbox/noticeConfig/list/c08"
	APIC08StatsCompare      = "token/litterbox/stats/data/compare/v2"
	APIC08StatsCats         = "token/litterbox/stats/cats"
	APIC08LinkedPets        = "token/litterbox/linkedPets"
	APIC08CatListSelectable = "token/litterbox/cat/listSelectable"
	APIC08WifiInfo          = "token/litterbox/wifi/info"
	APIC08AboutDevice       = "token/litterbox/aboutDevice"
)

// ServerURL resolves an account's API base from an explicit base or a
// region name, defaulting to the global cluster.
func ServerURL(apiBase, region string) string {
	if apiBase != "" {
		return apiBase
	}
	if s, ok := APIServers[region]; ok {
		return s
	}
	return APIServers["global"]
}
