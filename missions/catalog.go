package missions

import (
	"errors"
	"fmt"

	"github.com/gosimple/slug"
)

// KeyVersion identifies the answer keys below. Bump it whenever a key
// changes so recorded attempts can be traced to the key that graded them.
const KeyVersion = 1

const (
	BadgeAlgorithmMaster = "Master Algoritma"
	BadgeFlowchartMaster = "Master Carta Alir"
	BadgeLogicFixer      = "Master Pemulih Logik"
)

var ErrUnknownPhase = errors.New("unknown mission phase")

type Mission struct {
	ID     int         `json:"id"`
	Title  string      `json:"title"`
	Phases []PhaseSpec `json:"phases"`
}

type PhaseSpec struct {
	Phase Phase   `json:"phase"`
	Title string  `json:"title"`
	Badge string  `json:"badge,omitempty"`
	Key   *Answer `json:"-"`
}

// BadgeCode is the stable identifier stored for a badge name.
func BadgeCode(name string) string {
	return slug.Make(name)
}

func (p PhaseSpec) BadgeCode() string {
	if p.Badge == "" {
		return ""
	}
	return BadgeCode(p.Badge)
}

func Missions() []Mission {
	return catalog
}

func MissionCount() int {
	return len(catalog)
}

func Find(missionID int) (*Mission, bool) {
	for i := range catalog {
		if catalog[i].ID == missionID {
			return &catalog[i], true
		}
	}
	return nil, false
}

// Lookup returns the phase definition, including its answer key.
func Lookup(missionID int, phase Phase) (*PhaseSpec, error) {
	m, ok := Find(missionID)
	if !ok {
		return nil, fmt.Errorf("%w: mission %d", ErrUnknownPhase, missionID)
	}
	for i := range m.Phases {
		if m.Phases[i].Phase == phase {
			return &m.Phases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: mission %d phase %q", ErrUnknownPhase, missionID, phase)
}

var catalog = []Mission{
	{
		ID:    1,
		Title: "Sistem Pendaftaran Pelajar",
		Phases: []PhaseSpec{
			{
				Phase: PhaseDecomposition,
				Title: "Kenal pasti Input, Proses dan Output",
				Key: &Answer{Groups: map[string][]string{
					"input":  {"i1", "i2", "i3", "i4", "i7"},
					"proses": {"i6"},
					"output": {"i5"},
				}},
			},
			{
				Phase: PhaseAbstraction,
				Title: "Pilih maklumat penting dan susun langkah",
				Key: &Answer{
					Groups:   map[string][]string{"penting": {"m-1", "m-3", "m-5", "m-7", "m-8"}},
					Sequence: []string{"l-3", "l-1", "l-2"},
				},
			},
			{
				Phase: PhaseConstruction,
				Title: "Bina algoritma pendaftaran",
				Badge: BadgeAlgorithmMaster,
				Key:   &Answer{Sequence: []string{"s5", "s2", "s3", "s1", "s4"}},
			},
			{
				Phase: PhaseDebugging,
				Title: "Betulkan urutan cetak slip",
				Badge: BadgeLogicFixer,
				Key: &Answer{Slots: map[string]string{
					"step1": "1",
					"step2": "2",
					"step3": "4",
					"step4": "3",
					"step5": "5",
				}},
			},
		},
	},
	{
		ID:    2,
		Title: "Sistem Keputusan Peperiksaan",
		Phases: []PhaseSpec{
			{
				Phase: PhaseDecomposition,
				Title: "Kenal pasti Input, Proses dan Output",
				Key: &Answer{Groups: map[string][]string{
					"input":  {"item-2", "item-5", "item-8"},
					"proses": {"item-1", "item-3", "item-6"},
					"output": {"item-4", "item-7"},
				}},
			},
			{
				Phase: PhaseAbstraction,
				Title: "Pilih data penting dan susun langkah",
				Key: &Answer{
					Groups:   map[string][]string{"penting": {"d-2", "d-3", "d-6", "d-7", "d-10"}},
					Sequence: []string{"l-1", "l-2", "l-3"},
				},
			},
			{
				Phase: PhaseConstruction,
				Title: "Lengkapkan carta alir status lulus",
				Badge: BadgeFlowchartMaster,
				Key: &Answer{Slots: map[string]string{
					"oval1":          "Mula",
					"parallelogram1": "Masukkan Markah PB, Markah PA",
					"diamond1":       "Jika PB ≥ 50 ?",
					"diamond2":       "Jika PA ≥ 50 ?",
					"rectangle1":     "Set Status = Lulus",
					"rectangle2":     "Set Status = Gagal",
					"parallelogram2": "Cetak Status",
					"oval2":          "Tamat",
				}},
			},
			{
				Phase: PhaseDebugging,
				Title: "Kesan ralat logik pseudokod",
				Badge: BadgeLogicFixer,
				Key:   &Answer{Choice: "B"},
			},
		},
	},
	{
		ID:    3,
		Title: "Sistem Yuran Pelajar",
		Phases: []PhaseSpec{
			{
				Phase: PhaseDecomposition,
				Title: "Kenal pasti komponen sistem kewangan",
				Key: &Answer{Groups: map[string][]string{
					"input":  {"item-2", "item-5", "item-6", "item-8", "item-11"},
					"proses": {"item-1", "item-3", "item-10"},
					"output": {"item-4", "item-7", "item-9"},
				}},
			},
			{
				Phase: PhaseAbstraction,
				Title: "Pilih data penting dan susun langkah bayaran",
				Key: &Answer{
					Groups:   map[string][]string{"penting": {"d-2", "d-3", "d-4", "d-7", "d-9"}},
					Sequence: []string{"l-5", "l-3", "l-1", "l-6", "l-4", "l-2"},
				},
			},
			{
				Phase: PhaseConstruction,
				Title: "Lengkapkan carta alir status bayaran",
				Badge: BadgeAlgorithmMaster,
				Key: &Answer{Slots: map[string]string{
					"oval1":          "Mula",
					"parallelogram1": "Masukkan No Pendaftaran",
					"parallelogram2": "Masukkan Jenis Yuran, Jumlah Yuran dan Jumlah Bayaran",
					"rectangle1":     "Kira Baki= Jumlah Yuran – Jumlah Bayaran",
					"diamond1":       "Jika Baki = 0",
					"rectangle2":     "Status Bayaran = Lunas",
					"parallelogram3": "Papar No Pendaftaran, Status Bayaran, Baki Yuran",
					"diamond2":       "Ulang pelajar seterusnya?",
					"oval2":          "Tamat",
					"rectangle3":     "Status Bayaran = Belum Lunas",
				}},
			},
			{
				Phase: PhaseDebugging,
				Title: "Betulkan simbol perbandingan",
				Badge: BadgeLogicFixer,
				Key:   &Answer{Choice: "D"},
			},
		},
	},
}
