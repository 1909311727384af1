package postgres

// Table names keep the French naming of the historical schema so existing
// data and dashboards stay valid.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS cities (
    id            SERIAL PRIMARY KEY,
    city_name     TEXT,
    water_code    TEXT NOT NULL,
    commune_code  TEXT NOT NULL,
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_cities_active ON cities (active);

CREATE TABLE IF NOT EXISTS fait_anl_criteres_recherche (
    id           TEXT PRIMARY KEY,
    departement  TEXT NOT NULL,
    commune      TEXT NOT NULL,
    reseau       TEXT NOT NULL,
    communes     TEXT,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS fait_anl_informations_generales (
    id                        TEXT PRIMARY KEY REFERENCES fait_anl_criteres_recherche (id),
    date_prelevement          TIMESTAMPTZ,
    commune_prelevement       TEXT,
    installation              TEXT,
    service_distribution      TEXT,
    responsable_distribution  TEXT,
    maitre_ouvrage            TEXT,
    updated_at                TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS fait_anl_conformite (
    id                           TEXT PRIMARY KEY REFERENCES fait_anl_criteres_recherche (id),
    conclusions_sanitaires       TEXT,
    conformite_bacteriologique   TEXT,
    conformite_physico_chimique  TEXT,
    respect_references_qualite   TEXT,
    updated_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS fait_anl_resultats_analyses (
    id                 TEXT NOT NULL REFERENCES fait_anl_criteres_recherche (id),
    parametre          TEXT NOT NULL,
    valeur             TEXT,
    valeur_num         DOUBLE PRECISION,
    limite_qualite     TEXT,
    reference_qualite  TEXT,
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (id, parametre)
);
CREATE INDEX IF NOT EXISTS idx_resultats_parametre ON fait_anl_resultats_analyses (parametre);
`
