package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.fiblab.net/sim/fare/fare"
	"git.fiblab.net/sim/fare/loader"
)

const SQLITE_PREFIX = "sqlite:"

// 线路距离记录的来源：CSV文件、SQLite文件或MongoDB集合
type Path struct {
	File   string
	SQLite string
	DB     string
	Coll   string
}

func NewPath(pathOrColl string) (*Path, error) {
	pathOrColl = strings.TrimSpace(pathOrColl)
	if pathOrColl == "" {
		return nil, nil
	}
	if strings.HasPrefix(pathOrColl, SQLITE_PREFIX) {
		return &Path{SQLite: strings.TrimPrefix(pathOrColl, SQLITE_PREFIX)}, nil
	}
	// 检查pathOrColl是否作为文件存在
	if _, err := os.Stat(pathOrColl); err == nil {
		switch strings.ToLower(filepath.Ext(pathOrColl)) {
		case ".db", ".sqlite", ".sqlite3":
			return &Path{SQLite: pathOrColl}, nil
		default:
			return &Path{File: pathOrColl}, nil
		}
	}
	switch ext := strings.ToLower(filepath.Ext(pathOrColl)); ext {
	case ".csv", ".db", ".sqlite", ".sqlite3":
		return nil, fmt.Errorf("%s file %s does not exist", strings.TrimPrefix(ext, "."), pathOrColl)
	}
	splitted := strings.Split(pathOrColl, ".")
	if len(splitted) != 2 || splitted[0] == "" || splitted[1] == "" {
		return nil, fmt.Errorf("dbDotColl is invalid: %s", pathOrColl)
	}
	return &Path{
		DB:   splitted[0],
		Coll: splitted[1],
	}, nil
}

func (p *Path) String() string {
	switch {
	case p.File != "":
		return p.File
	case p.SQLite != "":
		return SQLITE_PREFIX + p.SQLite
	default:
		return p.DB + "." + p.Coll
	}
}

// 按来源类型读取记录，MongoDB来源需要mongoURI
func (p *Path) Load(ctx context.Context, mongoURI string) ([]fare.RouteRecord, error) {
	switch {
	case p.File != "":
		return loader.LoadCSVFile(p.File)
	case p.SQLite != "":
		return loader.LoadSQLiteFile(ctx, p.SQLite)
	}
	if mongoURI == "" {
		return nil, fmt.Errorf("mongo uri is required to load %s", p)
	}
	client, err := loader.NewMongoClient(ctx, mongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}
	defer client.Disconnect(context.Background())
	return loader.LoadMongo(ctx, client, p.DB, p.Coll)
}
