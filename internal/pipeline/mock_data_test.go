package pipeline_test

// reportPage is a trimmed OROBNAT result page: all three sections present,
// one analyte outside the allow-list.
const reportPage = `<html><body>
<select name="departement">
  <option value="095">VAL-D'OISE</option>
</select>
<select name="communeDepartement">
  <option value="95176">CORMEILLES-EN-PARISIS</option>
</select>
<p>
  <label>Commune(s) et/ou quartier(s) du réseau :</label>
  <span> - CORMEILLES-EN-PARISIS<br> - LA FRETTE-SUR-SEINE</span>
</p>
<h3>Informations générales</h3>
<table>
  <tr><th>Date du prélèvement</th><td>12/05/2024 14h30</td></tr>
  <tr><th>Commune de prélèvement</th><td>CORMEILLES-EN-PARISIS</td></tr>
  <tr><th>Installation</th><td>USINE DE MERY-SUR-OISE</td></tr>
</table>
<h3>Conformité</h3>
<table>
  <tr><th>Conclusions sanitaires</th><td>Eau conforme aux exigences de qualité.</td></tr>
  <tr><th>Conformité bactériologique</th><td>oui</td></tr>
</table>
<h3>Résultats d'analyses</h3>
<table>
  <tr><th>Paramètre</th><th>Valeur</th><th>Limite de qualité</th><th>Référence de qualité</th></tr>
  <tr><td>pH</td><td>7,8</td><td></td><td>≥6,5 et ≤9 unité pH</td></tr>
  <tr><td>Chlore libre</td><td>0,45 mg/LCl2</td><td></td><td></td></tr>
  <tr><td>Nitrates (en NO3)</td><td>32 mg/L</td><td>≤50 mg/L</td><td></td></tr>
</table>
</body></html>`

// reportPageNoDate lacks the sampling date, forcing the current-date
// identifier fallback.
const reportPageNoDate = `<html><body>
<h3>Informations générales</h3>
<table>
  <tr><th>Commune de prélèvement</th><td>CORMEILLES-EN-PARISIS</td></tr>
</table>
<h3>Résultats d'analyses</h3>
<table>
  <tr><td>pH</td><td>7,8</td><td></td><td></td></tr>
</table>
</body></html>`

// reportPageNoConformity is missing a whole section, as some régions render.
const reportPageNoConformity = `<html><body>
<h3>Informations générales</h3>
<table>
  <tr><th>Date du prélèvement</th><td>12/05/2024</td></tr>
</table>
<h3>Résultats d'analyses</h3>
<table>
  <tr><td>pH</td><td>7,8</td><td></td><td></td></tr>
</table>
</body></html>`
