package zusi

// Message group and command IDs of the Zusi3 TCP protocol.
const (
	MsgConnecting uint16 = 0x0001
	MsgFahrpult   uint16 = 0x0002

	CmdHello         uint16 = 0x0001
	CmdAckHello      uint16 = 0x0002
	CmdNeededData    uint16 = 0x0003
	CmdAckNeededData uint16 = 0x0004
	CmdDataFtd       uint16 = 0x000A

	// NodeFuehrerstand groups the subscribed FsData IDs inside NEEDED_DATA.
	NodeFuehrerstand uint16 = 0x000A
)

// FsData identifies one Führerstand data channel.
type FsData uint16

const (
	FsGeschwindigkeit         FsData = 1
	FsDruckHauptluftleitung   FsData = 2
	FsDruckBremszylinder      FsData = 3
	FsDruckHauptluftbehaelter FsData = 4
	FsOberstrom               FsData = 13
	FsFahrleitungsspannung    FsData = 14
	FsMotordrehzahl           FsData = 15
	FsUhrzeitStunde           FsData = 16
	FsUhrzeitMinute           FsData = 17
	FsUhrzeitSekunde          FsData = 18
	FsHauptschalter           FsData = 19
	FsFahrstufe               FsData = 21
	FsAfbSollGeschw           FsData = 23
	FsStreckenMaxGeschw       FsData = 25
	FsAfbEinAus               FsData = 54
	// FsStromabnehmer shares the numeric ID with the ETCS release speed in
	// some documentation revisions; the receive loop consumes it as the
	// pantograph state.
	FsStromabnehmer  FsData = 85
	FsKilometrierung FsData = 97

	FsSifa                   FsData = 0x64
	FsStatusZugbeeinflussung FsData = 0x65
	FsStatusTueren           FsData = 0x66
)

// Sub-node and attribute IDs inside the structured FsData children.
const (
	// SIFA (node 0x64)
	sifaLicht           uint16 = 2
	sifaHupe            uint16 = 3
	sifaHauptschalter   uint16 = 4
	sifaStoerschalter   uint16 = 5
	sifaLuftabsperrhahn uint16 = 6

	// STATUS_ZUGBEEINFLUSSUNG (node 0x65) children
	zbBetriebsdaten uint16 = 3

	// Betriebsdaten attributes (PZB/LZB operating data)
	bdIndusiZustand  uint16 = 0x02
	bdZwangsbremsung uint16 = 0x03
	bdLzbZustand     uint16 = 0x0D
	bdLzbEndeNode    uint16 = 0x0E // child node carrying lzb_ende_verfahren
	bdLzbVSoll       uint16 = 0x21
	bdLzbVZiel       uint16 = 0x22
	bdLzbSZiel       uint16 = 0x23
	bdLmG            uint16 = 0x24
	bdLmPruefStoer   uint16 = 0x25
	bdLm1000Hz       uint16 = 0x2F
	bdLmO            uint16 = 0x30 // Obere Zugart -> 85
	bdLmM            uint16 = 0x31 // Mittlere Zugart -> 70
	bdLmU            uint16 = 0x32 // Untere Zugart -> 55
	bdLm500Hz        uint16 = 0x33
	bdLmBefehl       uint16 = 0x34
	bdLmEnde         uint16 = 0x3A
	bdLmB            uint16 = 0x3B
	bdLmUe           uint16 = 0x3C
	bdLmEL           uint16 = 0x3D
	bdLmV40          uint16 = 0x3E
	bdLmS            uint16 = 0x3F

	// INDUSI_ZUSTAND value meaning "normal operation"
	indusiNormalbetrieb uint16 = 5

	// STATUS_TUEREN (node 0x66) attributes
	tuerenLinks  uint16 = 2
	tuerenRechts uint16 = 3

	// lzb_ende_verfahren attribute inside the 0x0E child
	lzbEndeVerfahren uint16 = 1
)

// DefaultSubscription is the FsData set a bridge client subscribes to.
func DefaultSubscription() []FsData {
	return []FsData{
		FsGeschwindigkeit,
		FsDruckHauptluftleitung,
		FsDruckBremszylinder,
		FsDruckHauptluftbehaelter,
		FsOberstrom,
		FsFahrleitungsspannung,
		FsMotordrehzahl,
		FsUhrzeitStunde,
		FsUhrzeitMinute,
		FsUhrzeitSekunde,
		FsHauptschalter,
		FsStromabnehmer,
		FsAfbEinAus,
		FsAfbSollGeschw,
		FsStreckenMaxGeschw,
		FsFahrstufe,
		FsSifa,
		FsStatusZugbeeinflussung,
		FsStatusTueren,
		FsKilometrierung,
	}
}
