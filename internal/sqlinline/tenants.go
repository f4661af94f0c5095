package sqlinline

const QSelectTenantSettings = `--sql 7f7c2a64-90be-4f1e-9f3f-2a7c5f6d1b42
select
  t.id,
  t.name,
  coalesce(t.embed_whitelist, '{}')::text[],
  coalesce(t.watermark_url, ''),
  coalesce(t.logo_url, '')
from tenants t
where t.id = $1;
`

const QSelectTenantPresets = `--sql 3b1d9a02-55c7-4f0a-8a7e-e4c1f2d7a9c3
select
  p.id,
  p.name,
  coalesce(p.description, ''),
  coalesce(p.reference_url, ''),
  coalesce(p.price_per_ft_min, 0),
  coalesce(p.price_per_ft_max, 0)
from style_presets p
where p.tenant_id = $1
order by p.sort_order asc, p.name asc;
`
