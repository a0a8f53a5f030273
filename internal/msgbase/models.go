package msgbase

// userRow is a message originator or recipient. A point address, domain and
// foreign_address are all optional; name falls back to "<empty>" when the
// decoded display name was blank.
type userRow struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string `gorm:"column:name;not null"`
	Zone           *int64 `gorm:"column:zone"`
	Net            *int64 `gorm:"column:net"`
	Node           *int64 `gorm:"column:node"`
	Point          *int64 `gorm:"column:point"`
	Domain         *string `gorm:"column:domain"`
	ForeignAddress *string `gorm:"column:foreign_address"`
}

func (userRow) TableName() string { return "users" }

type subjectRow struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Subject string `gorm:"column:subject;not null"`
}

func (subjectRow) TableName() string { return "subjects" }

// seenByRow is one (id, net, node) triple belonging to a SEEN-BY set shared
// by id across rows; id is not a primary key (many rows share one id).
type seenByRow struct {
	ID   int64 `gorm:"column:id"`
	Net  int64 `gorm:"column:net"`
	Node int64 `gorm:"column:node"`
}

func (seenByRow) TableName() string { return "seen_bys" }

// pathRow is one (id, position, net, node) entry belonging to a PATH
// sequence shared by id; position preserves hop order.
type pathRow struct {
	ID       int64 `gorm:"column:id"`
	Position int64 `gorm:"column:position"`
	Net      int64 `gorm:"column:net"`
	Node     int64 `gorm:"column:node"`
}

func (pathRow) TableName() string { return "paths" }

type softwareRow struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null"`
}

func (softwareRow) TableName() string { return "software" }

type tearLineRow struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	TearLine string `gorm:"column:tear_line;not null"`
}

func (tearLineRow) TableName() string { return "tear_lines" }

type originRow struct {
	ID     int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Origin string `gorm:"column:origin;not null"`
}

func (originRow) TableName() string { return "origins" }

type messageRow struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Posted       string  `gorm:"column:posted;not null"`
	TZUTC        *string `gorm:"column:tzutc"`
	Tossed       string  `gorm:"column:tossed"`
	MsgIDSerial  int64   `gorm:"column:msgid_serial;not null"`
	ReplySerial  *int64  `gorm:"column:reply_serial"`
	MsgIDAddress *string `gorm:"column:msgid_address"`
	ReplyAddress *string `gorm:"column:reply_address"`
	FromID       int64   `gorm:"column:from_id;not null"`
	ToID         int64   `gorm:"column:to_id;not null"`
	Flags        int64   `gorm:"column:flags;not null"`
	SubjectID    *int64  `gorm:"column:subject_id"`
	Body         string  `gorm:"column:body"`
	TearLineID   *int64  `gorm:"column:tear_line_id"`
	OriginID     *int64  `gorm:"column:origin_id"`
	PIDID        *int64  `gorm:"column:pid_id"`
	TIDID        *int64  `gorm:"column:tid_id"`
	SeenByID     *int64  `gorm:"column:seen_by_id"`
	PathID       *int64  `gorm:"column:path_id"`
}

func (messageRow) TableName() string { return "messages" }

type kludgeRow struct {
	MessageID int64  `gorm:"column:message_id;not null"`
	Kludge    string `gorm:"column:kludge;not null"`
}

func (kludgeRow) TableName() string { return "kludges" }
